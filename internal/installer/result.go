package installer

// State is the terminal state of an installation.
type State string

const (
	// StateInstalled means the new tree is live and the launcher link points at it.
	StateInstalled State = "Installed"
	// StateAborted means the live installation was left as it was.
	StateAborted State = "Aborted"
	// StatePartiallyInstalled means the live path was changed but the run did
	// not finish. Result.Remediation says what to do.
	StatePartiallyInstalled State = "PartiallyInstalled"
)

// Step names one stage of the installation pipeline.
type Step string

const (
	StepExtract   Step = "ExtractToStaging"
	StepRemediate Step = "RemediateSandboxPermissions"
	StepBackup    Step = "BackupExisting"
	StepSwap      Step = "SwapIntoPlace"
	StepRelink    Step = "RelinkLauncher"
	StepRefresh   Step = "RefreshDesktopIntegration"
	StepCleanup   Step = "CleanupStaging"
)

// Result is the outcome of Install or Rollback.
type Result struct {
	State State
	// Step is the failing step, or the last step run on success.
	Step Step
	// Err is a *StepError when State is not StateInstalled.
	Err error
	// BackupPath is the backup generation created by this run, if any.
	BackupPath  string
	Warnings    []string
	Remediation string
}

// OK reports whether the installation completed.
func (r *Result) OK() bool {
	return r.State == StateInstalled
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Result) fail(state State, step Step, err error) *Result {
	r.State = state
	r.Step = step
	r.Err = &StepError{Step: step, Err: err}

	return r
}
