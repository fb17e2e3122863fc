package updater_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/internal/updater"
	"github.com/smykla-skalski/cursor-updater/internal/version"
)

func vptr(s string) *version.Version {
	v := version.MustParse(s)

	return &v
}

var _ = Describe("ComputePlan", func() {
	DescribeTable("decisions",
		func(current *version.Version, latest string, force, probeFailed, should bool, reason updater.Reason) {
			plan := updater.ComputePlan(current, version.MustParse(latest), force, probeFailed)

			Expect(plan.ShouldUpdate).To(Equal(should))
			Expect(plan.Reason).To(Equal(reason))
			Expect(plan.To.String()).To(Equal(version.MustParse(latest).String()))
		},
		Entry("newer available", vptr("1.0.0"), "1.1.0", false, false, true, updater.ReasonNewerAvailable),
		Entry("newer available with force", vptr("1.0.0"), "1.1.0", true, false, true, updater.ReasonNewerAvailable),
		Entry("same version", vptr("1.0.0"), "1.0.0", false, false, false, updater.ReasonUpToDate),
		Entry("same version forced", vptr("1.0.0"), "1.0.0", true, false, true, updater.ReasonForcedByUser),
		Entry("local is newer", vptr("1.2.0"), "1.1.0", false, false, false, updater.ReasonUpToDate),
		Entry("nothing installed", nil, "1.1.0", false, false, true, updater.ReasonNoLocalInstall),
		Entry("unknown local version", nil, "1.1.0", false, true, true, updater.ReasonUnknownLocalVersion),
		Entry("pre-release to release", vptr("1.0.0-beta"), "1.0.0", false, false, true, updater.ReasonNewerAvailable),
		Entry("numeric not lexical", vptr("1.2.0"), "1.10.0", false, false, true, updater.ReasonNewerAvailable),
	)

	It("keeps the installed version as From", func() {
		plan := updater.ComputePlan(vptr("1.0.0"), version.MustParse("1.1.0"), false, false)
		Expect(plan.From).NotTo(BeNil())
		Expect(plan.FromString()).To(Equal("1.0.0"))
	})

	It("renders missing versions", func() {
		Expect(updater.ComputePlan(nil, version.MustParse("1.1.0"), false, false).FromString()).To(Equal("none"))
		Expect(updater.ComputePlan(nil, version.MustParse("1.1.0"), false, true).FromString()).To(Equal("unknown"))
	})
})
