package tui_test

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/cursor-updater/internal/prompt"
	"github.com/smykla-skalski/cursor-updater/internal/tui"
)

var _ = Describe("TUI", func() {
	Describe("New", func() {
		Context("in non-TTY environment (CI)", func() {
			It("returns FallbackUI", func() {
				ui := tui.New()
				Expect(ui.IsInteractive()).To(BeFalse())
			})
		})
	})

	Describe("NewWithFallback", func() {
		It("returns FallbackUI when noTUI is true", func() {
			ui := tui.NewWithFallback(true)
			Expect(ui.IsInteractive()).To(BeFalse())
		})

		It("delegates to New when noTUI is false", func() {
			Expect(tui.NewWithFallback(false).IsInteractive()).To(Equal(tui.New().IsInteractive()))
		})
	})

	Describe("NewHuhUI", func() {
		It("is interactive", func() {
			Expect(tui.NewHuhUI().IsInteractive()).To(BeTrue())
		})
	})

	Describe("FallbackUI", func() {
		It("prints the description and asks", func() {
			var out bytes.Buffer

			ui := tui.NewFallbackUIWithPrompter(prompt.NewPrompter(strings.NewReader("y\n"), &out), &out)

			ok, err := ui.Confirm(tui.ConfirmOptions{
				Title:       "Restore /opt/cursor_old_20260314_092653?",
				Description: "The current installation is kept as a new backup.",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(out.String()).To(ContainSubstring("kept as a new backup"))
			Expect(out.String()).To(ContainSubstring("Restore /opt/cursor_old_20260314_092653? [y/N]"))
		})

		It("uses the default on empty input", func() {
			var out bytes.Buffer

			ui := tui.NewFallbackUIWithPrompter(prompt.NewPrompter(strings.NewReader("\n"), &out), &out)

			ok, err := ui.Confirm(tui.ConfirmOptions{Title: "Continue?", Default: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})
})

var _ = Describe("Progress", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	Context("on non-terminal output", func() {
		It("prints one line per quarter", func() {
			p := tui.NewProgress(out, "Cursor.AppImage")

			for received := int64(0); received <= 1000; received += 100 {
				p.Update(received, 1000)
			}

			p.Done()

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			Expect(lines).To(HaveLen(5))
			Expect(lines[0]).To(ContainSubstring("0%"))
			Expect(lines[4]).To(ContainSubstring("100%"))
			Expect(lines[4]).To(ContainSubstring("1.0 kB / 1.0 kB"))
			Expect(out.String()).NotTo(ContainSubstring("\r"))
		})

		It("prints the byte count once when the size is unknown", func() {
			p := tui.NewProgress(out, "Cursor.AppImage")
			p.Update(512, -1)
			p.Update(2048, -1)
			p.Done()

			Expect(strings.TrimSpace(out.String())).To(Equal("Cursor.AppImage 2.0 kB"))
		})
	})

	Context("on a terminal", func() {
		It("redraws in place and stays within the width", func() {
			p := tui.NewProgress(out, "Cursor-1.4.2-x86_64.AppImage", tui.WithTerminalWidth(40))
			p.Update(50_000_000, 100_000_000)
			p.Done()

			Expect(out.String()).To(HavePrefix("\r"))
			Expect(out.String()).To(HaveSuffix("\n"))

			for _, frame := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\r") {
				Expect(ansi.StringWidth(frame)).To(BeNumerically("<", 40))
			}
		})

		It("omits color codes unless enabled", func() {
			p := tui.NewProgress(out, "x", tui.WithTerminalWidth(120))
			p.Update(1, 2)

			Expect(ansi.Strip(out.String())).To(ContainSubstring("50%"))
			Expect(out.String()).NotTo(ContainSubstring("\x1b[38"))
		})
	})
})
