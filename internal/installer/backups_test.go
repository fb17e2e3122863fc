package installer_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/cursor-updater/internal/installer"
	"github.com/smykla-skalski/cursor-updater/pkg/logger"
)

var _ = Describe("Backups", func() {
	var (
		parent      string
		installPath string
	)

	BeforeEach(func() {
		parent = GinkgoT().TempDir()
		installPath = filepath.Join(parent, "cursor")
	})

	mkBackup := func(name, marker string) string {
		path := filepath.Join(parent, name)
		writeTree(path, map[string]string{"AppRun": marker})

		return path
	}

	Describe("NextBackupPath", func() {
		It("uses the timestamp when free", func() {
			Expect(installer.NextBackupPath(installPath, fixedNow)).
				To(Equal(filepath.Join(parent, "cursor_old_20260314_092653")))
		})

		It("appends an increasing suffix on collision", func() {
			mkBackup("cursor_old_20260314_092653", "a")
			mkBackup("cursor_old_20260314_092653_1", "b")

			Expect(installer.NextBackupPath(installPath, fixedNow)).
				To(Equal(filepath.Join(parent, "cursor_old_20260314_092653_2")))
		})

		It("ignores a trailing slash on the install path", func() {
			Expect(installer.NextBackupPath(installPath+"/", fixedNow)).
				To(Equal(filepath.Join(parent, "cursor_old_20260314_092653")))
		})
	})

	Describe("ListBackups", func() {
		It("returns backups newest first", func() {
			mkBackup("cursor_old_20250101_000000", "oldest")
			mkBackup("cursor_old_20260314_092653", "newer")
			mkBackup("cursor_old_20260314_092653_1", "newest")

			Expect(backupDirs(installPath)).To(Equal([]string{
				"cursor_old_20260314_092653_1",
				"cursor_old_20260314_092653",
				"cursor_old_20250101_000000",
			}))
		})

		It("skips unrelated entries", func() {
			mkBackup("cursor_old_20260314_092653", "ok")
			mkBackup("cursor_old_yesterday", "bad timestamp")
			mkBackup("cursor_old_20260314_092653_x", "bad suffix")
			mkBackup("other_old_20260314_092653", "other app")
			mkBackup("cursor", "live")
			Expect(os.WriteFile(filepath.Join(parent, "cursor_old_20260101_000000"), nil, 0o600)).To(Succeed())

			Expect(backupDirs(installPath)).To(Equal([]string{"cursor_old_20260314_092653"}))
		})

		It("parses the creation time", func() {
			mkBackup("cursor_old_20260314_092653", "ok")

			backups, err := installer.ListBackups(installPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(backups).To(HaveLen(1))
			Expect(backups[0].Created.Equal(fixedNow)).To(BeTrue())
			Expect(backups[0].Path).To(Equal(filepath.Join(parent, "cursor_old_20260314_092653")))
		})

		It("returns nothing when the parent does not exist", func() {
			backups, err := installer.ListBackups(filepath.Join(parent, "missing", "cursor"))
			Expect(err).NotTo(HaveOccurred())
			Expect(backups).To(BeEmpty())
		})
	})

	Describe("DirSize", func() {
		It("sums regular files", func() {
			writeTree(installPath, map[string]string{"a": "12345", "sub/b": "123"})
			Expect(os.Symlink("a", filepath.Join(installPath, "link"))).To(Succeed())

			Expect(installer.DirSize(installPath)).To(Equal(int64(8)))
		})

		It("fails for a missing directory", func() {
			_, err := installer.DirSize(filepath.Join(parent, "missing"))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with an installer", func() {
		var (
			ctx       context.Context
			fsys      *fakeFS
			refresher *installer.MockDesktopRefresher
			in        *installer.Installer
			paths     installer.Paths
		)

		BeforeEach(func() {
			ctx = context.Background()
			ctrl := gomock.NewController(GinkgoT())
			refresher = installer.NewMockDesktopRefresher(ctrl)
			fsys = newFakeFS()

			paths = installer.Paths{
				InstallPath: installPath,
				Symlink:     filepath.Join(parent, "bin", "cursor"),
				Launcher:    "AppRun",
				StagingRoot: filepath.Join(parent, "staging"),
			}

			in = installer.New(paths, fsys, installer.NewMockExtractor(ctrl), refresher,
				logger.NewNoOpLogger(), installer.WithClock(func() time.Time { return fixedNow }))
		})

		Describe("Prune", func() {
			BeforeEach(func() {
				mkBackup("cursor_old_20240101_000000", "1")
				mkBackup("cursor_old_20250101_000000", "2")
				mkBackup("cursor_old_20260101_000000", "3")
			})

			It("keeps the newest generations", func() {
				removed, err := in.Prune(ctx, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(removed).To(HaveLen(2))
				Expect(backupDirs(installPath)).To(Equal([]string{"cursor_old_20260101_000000"}))
			})

			It("does nothing when there are no more than keep backups", func() {
				removed, err := in.Prune(ctx, 3)
				Expect(err).NotTo(HaveOccurred())
				Expect(removed).To(BeEmpty())
				Expect(backupDirs(installPath)).To(HaveLen(3))
			})

			It("refuses to remove every backup", func() {
				_, err := in.Prune(ctx, 0)
				Expect(err).To(MatchError(installer.ErrInvalidKeep))
				Expect(backupDirs(installPath)).To(HaveLen(3))
			})

			It("reports removal failures", func() {
				fsys.removeErr = errors.New("permission denied")

				removed, err := in.Prune(ctx, 1)
				Expect(err).To(HaveOccurred())
				Expect(removed).To(BeEmpty())
				Expect(backupDirs(installPath)).To(HaveLen(3))
			})
		})

		Describe("Rollback", func() {
			It("fails without backups", func() {
				_, err := in.Rollback(ctx)
				Expect(err).To(MatchError(installer.ErrNoBackups))
			})

			It("restores the newest backup and keeps the current tree as a backup", func() {
				writeTree(installPath, map[string]string{"AppRun": "current"})
				mkBackup("cursor_old_20250101_000000", "older")
				mkBackup("cursor_old_20260101_000000", "previous")

				res, err := in.Rollback(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.State).To(Equal(installer.StateInstalled))

				Expect(snapshot(installPath)).To(Equal(map[string]string{"AppRun": "previous"}))
				Expect(res.BackupPath).To(Equal(filepath.Join(parent, "cursor_old_20260314_092653")))
				Expect(snapshot(res.BackupPath)).To(Equal(map[string]string{"AppRun": "current"}))
				Expect(backupDirs(installPath)).To(ConsistOf(
					"cursor_old_20260314_092653",
					"cursor_old_20250101_000000",
				))

				target, err := os.Readlink(paths.Symlink)
				Expect(err).NotTo(HaveOccurred())
				Expect(target).To(Equal(filepath.Join(installPath, "AppRun")))
			})

			It("restores into an empty install path", func() {
				mkBackup("cursor_old_20260101_000000", "previous")

				res, err := in.Rollback(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.OK()).To(BeTrue())
				Expect(res.BackupPath).To(BeEmpty())
				Expect(snapshot(installPath)).To(Equal(map[string]string{"AppRun": "previous"}))
			})

			It("reports a partial rollback when relinking fails", func() {
				mkBackup("cursor_old_20260101_000000", "previous")
				fsys.symlinkErr = errors.New("permission denied")

				res, err := in.Rollback(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.State).To(Equal(installer.StatePartiallyInstalled))
				Expect(res.Remediation).To(ContainSubstring("ln -sfn"))
			})
		})
	})
})
