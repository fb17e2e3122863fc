package updater

import (
	"github.com/smykla-skalski/cursor-updater/internal/version"
)

// Reason explains an update decision.
type Reason string

const (
	ReasonNoLocalInstall      Reason = "NoLocalInstall"      // nothing installed
	ReasonNewerAvailable      Reason = "NewerAvailable"      // remote is newer than local
	ReasonForcedByUser        Reason = "ForcedByUser"        // same or newer local, --force given
	ReasonUpToDate            Reason = "UpToDate"            // local is current
	ReasonUnknownLocalVersion Reason = "UnknownLocalVersion" // installed but version unreadable
)

// Plan is the immutable update decision for one run.
type Plan struct {
	ShouldUpdate bool
	Reason       Reason
	// From is nil when nothing is installed or its version is unknown.
	From *version.Version
	To   version.Version
}

// ComputePlan decides whether to install latest over current. probeFailed
// marks an installation whose version could not be read; current must be nil then.
func ComputePlan(current *version.Version, latest version.Version, force, probeFailed bool) Plan {
	plan := Plan{From: current, To: latest}

	switch {
	case current == nil && probeFailed:
		plan.ShouldUpdate, plan.Reason = true, ReasonUnknownLocalVersion
	case current == nil:
		plan.ShouldUpdate, plan.Reason = true, ReasonNoLocalInstall
	case current.LessThan(latest):
		plan.ShouldUpdate, plan.Reason = true, ReasonNewerAvailable
	case force:
		plan.ShouldUpdate, plan.Reason = true, ReasonForcedByUser
	default:
		plan.Reason = ReasonUpToDate
	}

	return plan
}

// FromString renders the installed version for display.
func (p Plan) FromString() string {
	switch {
	case p.From != nil:
		return p.From.String()
	case p.Reason == ReasonUnknownLocalVersion:
		return "unknown"
	default:
		return "none"
	}
}
