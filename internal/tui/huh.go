package tui

import (
	"charm.land/huh/v2"
)

// HuhUI implements UI using huh forms.
type HuhUI struct{}

// NewHuhUI creates a new HuhUI instance.
func NewHuhUI() *HuhUI {
	return &HuhUI{}
}

// IsInteractive returns true as HuhUI is for interactive terminals.
func (*HuhUI) IsInteractive() bool {
	return true
}

// Confirm shows a confirm field.
func (*HuhUI) Confirm(opts ConfirmOptions) (bool, error) {
	accepted := opts.Default

	form := huh.NewForm(huh.NewGroup(buildConfirm(opts, &accepted)))
	if err := form.Run(); err != nil {
		return false, err
	}

	return accepted, nil
}

func buildConfirm(opts ConfirmOptions, value *bool) *huh.Confirm {
	field := huh.NewConfirm().
		Title(opts.Title).
		Affirmative("Yes").
		Negative("No").
		Value(value)

	if opts.Description != "" {
		field = field.Description(opts.Description)
	}

	return field
}
