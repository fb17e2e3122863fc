package version_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/internal/version"
)

var _ = Describe("Parse", func() {
	DescribeTable("accepts valid versions",
		func(input, canonical string) {
			v, err := version.Parse(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.String()).To(Equal(canonical))
		},
		Entry("three components", "1.2.3", "1.2.3"),
		Entry("v prefix", "v0.48.9", "0.48.9"),
		Entry("surrounding whitespace", "  1.0.0\n", "1.0.0"),
		Entry("two components", "1.2", "1.2"),
		Entry("four components", "1.2.3.4", "1.2.3.4"),
		Entry("pre-release", "1.0.0-beta.1", "1.0.0-beta.1"),
		Entry("build metadata", "1.0.0+linux.x64", "1.0.0+linux.x64"),
		Entry("pre-release and build", "2.0.0-rc.1+abc", "2.0.0-rc.1+abc"),
	)

	DescribeTable("rejects malformed versions with ParseError",
		func(input string) {
			_, err := version.Parse(input)
			Expect(err).To(HaveOccurred())

			var parseErr *version.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Input).To(Equal(input))
		},
		Entry("empty", ""),
		Entry("only prefix", "v"),
		Entry("word", "Unknown"),
		Entry("non-numeric component", "1.x.0"),
		Entry("trailing dot", "1.2."),
		Entry("leading dot", ".1.2"),
		Entry("empty pre-release", "1.0.0-"),
		Entry("empty build", "1.0.0+"),
		Entry("invalid pre-release identifier", "1.0.0-be_ta"),
		Entry("negative component", "1.-2.0"),
	)
})

var _ = Describe("Compare", func() {
	DescribeTable("orders representative pairs",
		func(lower, higher string) {
			a := version.MustParse(lower)
			b := version.MustParse(higher)

			Expect(version.Compare(a, b)).To(Equal(-1))
			Expect(version.Compare(b, a)).To(Equal(1))
			Expect(a.LessThan(b)).To(BeTrue())
			Expect(b.LessThan(a)).To(BeFalse())
		},
		Entry("numeric not lexical", "1.2.0", "1.10.0"),
		Entry("pre-release before release", "1.0.0-beta", "1.0.0"),
		Entry("alpha before beta", "1.0.0-alpha", "1.0.0-beta"),
		Entry("numeric pre-release identifiers", "1.0.0-rc.2", "1.0.0-rc.10"),
		Entry("shorter core is lower when prefix equal", "1.2", "1.2.0"),
		Entry("major dominates", "0.99.99", "1.0.0"),
		Entry("four components", "1.2.3.4", "1.2.3.5"),
	)

	It("treats build metadata as equal precedence", func() {
		a := version.MustParse("1.0.0+a")
		b := version.MustParse("1.0.0+b")

		Expect(a.Equal(b)).To(BeTrue())
	})

	It("is reflexive", func() {
		v := version.MustParse("3.1.4-rc.1")
		Expect(version.Compare(v, v)).To(Equal(0))
	})

	It("is antisymmetric and transitive over a sample", func() {
		samples := []string{
			"0.1", "0.1.0", "1.0.0-alpha", "1.0.0-alpha.1", "1.0.0-beta",
			"1.0.0-rc.1", "1.0.0", "1.0.1", "1.2.0", "1.10.0", "2.0.0.1",
		}

		parsed := make([]version.Version, len(samples))
		for i, s := range samples {
			parsed[i] = version.MustParse(s)
		}

		for _, a := range parsed {
			for _, b := range parsed {
				Expect(version.Compare(a, b)).To(Equal(-version.Compare(b, a)))

				for _, c := range parsed {
					if version.Compare(a, b) <= 0 && version.Compare(b, c) <= 0 {
						Expect(version.Compare(a, c)).To(BeNumerically("<=", 0))
					}
				}
			}
		}

		for i := 1; i < len(parsed); i++ {
			Expect(parsed[i-1].LessThan(parsed[i])).To(BeTrue(),
				"%s should be lower than %s", samples[i-1], samples[i])
		}
	})
})

var _ = Describe("Extract", func() {
	It("finds the version inside a download URL", func() {
		v, err := version.Extract(
			"https://downloads.cursor.com/production/abc/linux/x64/Cursor-0.48.9-x86_64.AppImage",
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.String()).To(Equal("0.48.9"))
	})

	It("returns ErrNoVersion when nothing matches", func() {
		_, err := version.Extract("https://example.com/latest/Cursor.AppImage")
		Expect(err).To(MatchError(version.ErrNoVersion))
	})
})

var _ = Describe("Text marshalling", func() {
	It("round-trips through UnmarshalText", func() {
		var v version.Version

		Expect(v.UnmarshalText([]byte("v1.4.0"))).To(Succeed())
		Expect(v.String()).To(Equal("1.4.0"))
	})

	It("propagates parse errors", func() {
		var v version.Version

		Expect(v.UnmarshalText([]byte("nope"))).NotTo(Succeed())
	})
})
