package installer_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"

	execpkg "github.com/smykla-skalski/cursor-updater/internal/exec"
	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

var _ = Describe("Privileged", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("SudoFS", func() {
		var (
			runner *execpkg.MockCommandRunner
			sfs    *installer.SudoFS
		)

		BeforeEach(func() {
			runner = execpkg.NewMockCommandRunner(gomock.NewController(GinkgoT()))
			sfs = installer.NewSudoFS(runner)
		})

		It("validates credentials interactively", func() {
			runner.EXPECT().RunAttached(ctx, "sudo", "-v").Return(execpkg.CommandResult{})
			Expect(sfs.Validate(ctx)).To(Succeed())
		})

		It("returns a permission error when sudo is refused", func() {
			runner.EXPECT().RunAttached(ctx, "sudo", "-v").
				Return(execpkg.CommandResult{ExitCode: 1, Stderr: "Sorry, try again."})

			err := sfs.Validate(ctx)

			var permErr *installer.PermissionError
			Expect(errors.As(err, &permErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Sorry, try again."))
		})

		It("chowns with numeric ids", func() {
			runner.EXPECT().Run(ctx, "sudo", "-n", "chown", "0:0", "--", "/s/chrome-sandbox").
				Return(execpkg.CommandResult{})
			Expect(sfs.Chown(ctx, "/s/chrome-sandbox", 0, 0)).To(Succeed())
		})

		It("chmods with the setuid bit in octal", func() {
			runner.EXPECT().Run(ctx, "sudo", "-n", "chmod", "4755", "--", "/s/chrome-sandbox").
				Return(execpkg.CommandResult{})
			Expect(sfs.Chmod(ctx, "/s/chrome-sandbox", os.ModeSetuid|0o755)).To(Succeed())
		})

		It("moves without descending into an existing directory", func() {
			runner.EXPECT().Run(ctx, "sudo", "-n", "mv", "-T", "--", "/stage", "/opt/cursor").
				Return(execpkg.CommandResult{})
			Expect(sfs.Move(ctx, "/stage", "/opt/cursor")).To(Succeed())
		})

		It("replaces links unconditionally", func() {
			gomock.InOrder(
				runner.EXPECT().Run(ctx, "sudo", "-n", "mkdir", "-p", "--", "/usr/local/bin").
					Return(execpkg.CommandResult{}),
				runner.EXPECT().Run(ctx, "sudo", "-n", "ln", "-sfnT", "--", "/opt/cursor/AppRun", "/usr/local/bin/cursor").
					Return(execpkg.CommandResult{}),
			)
			Expect(sfs.Symlink(ctx, "/opt/cursor/AppRun", "/usr/local/bin/cursor")).To(Succeed())
		})

		It("includes stderr in failures", func() {
			runner.EXPECT().Run(ctx, "sudo", "-n", "rm", "-rf", "--", "/opt/cursor").
				Return(execpkg.CommandResult{ExitCode: 1, Stderr: "rm: cannot remove: Device or resource busy\n"})

			err := sfs.RemoveAll(ctx, "/opt/cursor")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Device or resource busy"))
		})
	})

	Describe("LocalFS", func() {
		var (
			lfs *installer.LocalFS
			tmp string
		)

		BeforeEach(func() {
			lfs = installer.NewLocalFS()
			tmp = GinkgoT().TempDir()
		})

		It("moves a directory tree", func() {
			src := filepath.Join(tmp, "src")
			dst := filepath.Join(tmp, "dst")
			writeTree(src, map[string]string{"AppRun": "x", "usr/bin/app": "y"})

			Expect(lfs.Move(ctx, src, dst)).To(Succeed())
			Expect(snapshot(dst)).To(Equal(map[string]string{"AppRun": "x", "usr/bin/app": "y"}))
			Expect(src).NotTo(BeADirectory())
		})

		It("fails to move a missing source", func() {
			Expect(lfs.Move(ctx, filepath.Join(tmp, "missing"), filepath.Join(tmp, "dst"))).NotTo(Succeed())
		})

		It("creates and replaces symlinks", func() {
			link := filepath.Join(tmp, "bin", "cursor")

			Expect(lfs.Symlink(ctx, "/first", link)).To(Succeed())
			Expect(lfs.Symlink(ctx, "/second", link)).To(Succeed())

			target, err := os.Readlink(link)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal("/second"))

			entries, err := os.ReadDir(filepath.Dir(link))
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("leaves naming the path to the caller for ownership changes", func() {
			missing := filepath.Join(tmp, "missing", "chrome-sandbox")

			err := lfs.Chown(ctx, missing, 0, 0)
			Expect(errors.Is(err, unix.ENOENT)).To(BeTrue())
			Expect(err.Error()).NotTo(ContainSubstring(missing))

			err = lfs.Chmod(ctx, missing, os.ModeSetuid|0o755)
			Expect(errors.Is(err, unix.ENOENT)).To(BeTrue())
			Expect(err.Error()).NotTo(ContainSubstring(missing))
		})

		It("sets the setuid bit", func() {
			helper := filepath.Join(tmp, "chrome-sandbox")
			writeTree(tmp, map[string]string{"chrome-sandbox": "sandbox"})

			Expect(lfs.Chmod(ctx, helper, os.ModeSetuid|0o755)).To(Succeed())

			info, err := os.Stat(helper)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode()).To(Equal(os.ModeSetuid | 0o755))
		})

		It("removes trees", func() {
			dir := filepath.Join(tmp, "tree")
			writeTree(dir, map[string]string{"a/b": "c"})

			Expect(lfs.RemoveAll(ctx, dir)).To(Succeed())
			Expect(dir).NotTo(BeADirectory())
		})
	})

	Describe("SelectPrivileged", func() {
		It("honours explicit modes", func() {
			Expect(installer.SelectPrivileged(config.PrivilegeSudo, nil)).
				To(BeAssignableToTypeOf(&installer.SudoFS{}))
			Expect(installer.SelectPrivileged(config.PrivilegeDirect, nil)).
				To(BeAssignableToTypeOf(&installer.LocalFS{}))
		})

		It("uses direct operations only for root in auto mode", func() {
			selected := installer.SelectPrivileged(config.PrivilegeAuto, nil)

			if unix.Geteuid() == 0 {
				Expect(selected).To(BeAssignableToTypeOf(&installer.LocalFS{}))
			} else {
				Expect(selected).To(BeAssignableToTypeOf(&installer.SudoFS{}))
			}
		})
	})
})

var _ = Describe("AppImageExtractor", func() {
	var (
		ctx    context.Context
		runner *execpkg.MockCommandRunner
		dir    string
	)

	BeforeEach(func() {
		ctx = context.Background()
		runner = execpkg.NewMockCommandRunner(gomock.NewController(GinkgoT()))
		dir = GinkgoT().TempDir()
	})

	It("runs the bundle in the target directory", func() {
		runner.EXPECT().RunInDir(ctx, dir, "/tmp/Cursor.AppImage", "--appimage-extract").
			DoAndReturn(func(_ context.Context, d, _ string, _ ...string) execpkg.CommandResult {
				Expect(os.MkdirAll(filepath.Join(d, installer.ExtractedDirName), 0o755)).To(Succeed())

				return execpkg.CommandResult{}
			})

		root, err := installer.NewAppImageExtractor(runner).Extract(ctx, "/tmp/Cursor.AppImage", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(root).To(Equal(filepath.Join(dir, installer.ExtractedDirName)))
	})

	It("returns an extraction error when the bundle fails", func() {
		runner.EXPECT().RunInDir(ctx, dir, "/tmp/Cursor.AppImage", "--appimage-extract").
			Return(execpkg.CommandResult{ExitCode: 127, Stderr: "cannot execute binary file"})

		_, err := installer.NewAppImageExtractor(runner).Extract(ctx, "/tmp/Cursor.AppImage", dir)

		var extractErr *installer.ExtractionError
		Expect(errors.As(err, &extractErr)).To(BeTrue())
		Expect(extractErr.Output).To(Equal("cannot execute binary file"))
	})

	It("returns an extraction error when nothing was extracted", func() {
		runner.EXPECT().RunInDir(ctx, dir, "/tmp/Cursor.AppImage", "--appimage-extract").
			Return(execpkg.CommandResult{})

		_, err := installer.NewAppImageExtractor(runner).Extract(ctx, "/tmp/Cursor.AppImage", dir)

		var extractErr *installer.ExtractionError
		Expect(errors.As(err, &extractErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(installer.ExtractedDirName))
	})
})

var _ = Describe("DesktopDatabase", func() {
	It("runs update-desktop-database on the directory", func() {
		ctx := context.Background()
		runner := execpkg.NewMockCommandRunner(gomock.NewController(GinkgoT()))
		runner.EXPECT().Run(ctx, "update-desktop-database", "/home/u/.local/share/applications").
			Return(execpkg.CommandResult{})

		Expect(installer.NewDesktopDatabase(runner).Refresh(ctx, "/home/u/.local/share/applications")).To(Succeed())
	})

	It("returns the command failure", func() {
		ctx := context.Background()
		runner := execpkg.NewMockCommandRunner(gomock.NewController(GinkgoT()))
		runner.EXPECT().Run(ctx, "update-desktop-database", "/apps").
			Return(execpkg.CommandResult{ExitCode: 1, Err: errors.New("exit status 1")})

		Expect(installer.NewDesktopDatabase(runner).Refresh(ctx, "/apps")).NotTo(Succeed())
	})
})
