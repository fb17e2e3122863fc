package config_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

var _ = Describe("ParseSourceType", func() {
	It("should parse known source types", func() {
		t, err := config.ParseSourceType("github")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(config.SourceGitHub))
	})

	It("should reject unknown source types", func() {
		_, err := config.ParseSourceType("snap")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, config.ErrInvalidSourceType)).To(BeTrue())
	})
})

var _ = Describe("ParsePrivilegeMode", func() {
	DescribeTable("accepted modes",
		func(input string, expected config.PrivilegeMode) {
			m, err := config.ParsePrivilegeMode(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(expected))
		},
		Entry("auto", "auto", config.PrivilegeAuto),
		Entry("sudo", "sudo", config.PrivilegeSudo),
		Entry("direct", "direct", config.PrivilegeDirect),
	)

	It("should reject unknown modes", func() {
		_, err := config.ParsePrivilegeMode("doas")
		Expect(errors.Is(err, config.ErrInvalidPrivilegeMode)).To(BeTrue())
	})
})

var _ = Describe("Duration", func() {
	Describe("UnmarshalText", func() {
		It("should parse valid duration strings", func() {
			var d config.Duration
			err := d.UnmarshalText([]byte("10s"))
			Expect(err).NotTo(HaveOccurred())
			Expect(d.String()).To(Equal("10s"))
		})

		It("should parse duration with multiple units", func() {
			var d config.Duration
			err := d.UnmarshalText([]byte("1h30m"))
			Expect(err).NotTo(HaveOccurred())
			Expect(d.String()).To(Equal("1h30m0s"))
		})

		It("should return error for invalid duration format", func() {
			var d config.Duration
			err := d.UnmarshalText([]byte("invalid"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("invalid duration"))
		})

		It("should return error for negative duration", func() {
			var d config.Duration
			err := d.UnmarshalText([]byte("-5s"))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, config.ErrNegativeDuration)).To(BeTrue())
		})

		It("should accept zero duration", func() {
			var d config.Duration
			err := d.UnmarshalText([]byte("0s"))
			Expect(err).NotTo(HaveOccurred())
			Expect(d.String()).To(Equal("0s"))
		})
	})

	Describe("MarshalText", func() {
		It("should marshal duration to text", func() {
			var d config.Duration
			_ = d.UnmarshalText([]byte("5m"))
			text, err := d.MarshalText()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(text)).To(Equal("5m0s"))
		})

		It("should marshal zero duration", func() {
			var d config.Duration
			text, err := d.MarshalText()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(text)).To(Equal("0s"))
		})
	})

	Describe("String", func() {
		It("should return string representation", func() {
			var d config.Duration
			_ = d.UnmarshalText([]byte("2h"))
			Expect(d.String()).To(Equal("2h0m0s"))
		})
	})

	Describe("ToDuration", func() {
		It("should convert to time.Duration", func() {
			var d config.Duration
			_ = d.UnmarshalText([]byte("30s"))
			Expect(d.ToDuration().Seconds()).To(Equal(float64(30)))
		})
	})
})
