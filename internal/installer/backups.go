package installer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// BackupTimeLayout is the timestamp format used in backup directory names.
const BackupTimeLayout = "20060102_150405"

// Backup is one retained backup generation.
type Backup struct {
	Name    string
	Path    string
	Created time.Time
	// Seq is the collision suffix, 0 when the name has none.
	Seq int
}

func backupPrefix(installPath string) string {
	return filepath.Base(filepath.Clean(installPath)) + "_old_"
}

// NextBackupPath returns <parent>/<app>_old_<timestamp>, adding a _<n> suffix
// until the name is unused.
func NextBackupPath(installPath string, now time.Time) string {
	base := filepath.Join(filepath.Dir(filepath.Clean(installPath)), backupPrefix(installPath)+now.Format(BackupTimeLayout))

	candidate := base
	for n := 1; exists(candidate); n++ {
		candidate = fmt.Sprintf("%s_%d", base, n)
	}

	return candidate
}

// parseBackupName extracts the timestamp and suffix from a backup directory name.
func parseBackupName(prefix, name string) (time.Time, int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || len(rest) < len(BackupTimeLayout) {
		return time.Time{}, 0, false
	}

	created, err := time.ParseInLocation(BackupTimeLayout, rest[:len(BackupTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}

	suffix := rest[len(BackupTimeLayout):]
	if suffix == "" {
		return created, 0, true
	}

	seq, err := strconv.Atoi(strings.TrimPrefix(suffix, "_"))
	if !strings.HasPrefix(suffix, "_") || err != nil || seq < 1 {
		return time.Time{}, 0, false
	}

	return created, seq, true
}

// ListBackups returns the backup generations next to installPath, newest first.
func ListBackups(installPath string) ([]Backup, error) {
	parent := filepath.Dir(filepath.Clean(installPath))
	prefix := backupPrefix(installPath)

	entries, err := os.ReadDir(parent)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "reading %s", parent)
	}

	var backups []Backup

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		created, seq, ok := parseBackupName(prefix, e.Name())
		if !ok {
			continue
		}

		backups = append(backups, Backup{
			Name:    e.Name(),
			Path:    filepath.Join(parent, e.Name()),
			Created: created,
			Seq:     seq,
		})
	}

	slices.SortFunc(backups, func(a, b Backup) int {
		if c := b.Created.Compare(a.Created); c != 0 {
			return c
		}

		return b.Seq - a.Seq
	})

	return backups, nil
}

// DirSize sums the sizes of regular files below path.
func DirSize(path string) (int64, error) {
	var size int64

	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		size += info.Size()

		return nil
	})

	return size, errors.Wrapf(err, "measuring %s", path)
}

// Prune removes all but the keep newest backups and returns the removed ones.
func (in *Installer) Prune(ctx context.Context, keep int) ([]Backup, error) {
	if keep < 1 {
		return nil, ErrInvalidKeep
	}

	backups, err := ListBackups(in.paths.InstallPath)
	if err != nil {
		return nil, err
	}

	if len(backups) <= keep {
		return nil, nil
	}

	var (
		removed []Backup
		errs    []error
	)

	for _, b := range backups[keep:] {
		if err := in.fs.RemoveAll(ctx, b.Path); err != nil {
			errs = append(errs, errors.Wrapf(err, "removing backup %s", b.Name))

			continue
		}

		in.log.Info("backup removed", "backup", b.Path)
		removed = append(removed, b)
	}

	return removed, errors.Join(errs...)
}

// Rollback makes the newest backup live again. The current installation, if
// any, becomes a new backup generation so the rollback can itself be undone.
func (in *Installer) Rollback(ctx context.Context) (*Result, error) {
	backups, err := ListBackups(in.paths.InstallPath)
	if err != nil {
		return nil, err
	}

	if len(backups) == 0 {
		return nil, ErrNoBackups
	}

	restore := backups[0]
	live := in.paths.InstallPath
	res := &Result{}

	in.log.Info("rolling back", "backup", restore.Path, "live", live)

	hadLive := exists(live)
	if hadLive {
		aside := NextBackupPath(live, in.now())
		if err := in.fs.Move(ctx, live, aside); err != nil {
			return in.failed(res, StateAborted, StepBackup, err), nil
		}

		res.BackupPath = aside
	}

	if err := in.fs.Move(ctx, restore.Path, live); err != nil {
		return in.swapFailed(ctx, res, hadLive, err), nil
	}

	if err := in.fs.Symlink(ctx, in.paths.LauncherTarget(), in.paths.Symlink); err != nil {
		res.Remediation = fmt.Sprintf(
			"%s was restored but %s was not updated; fix it with `sudo ln -sfn %s %s`",
			restore.Name, in.paths.Symlink, in.paths.LauncherTarget(), in.paths.Symlink,
		)

		return in.failed(res, StatePartiallyInstalled, StepRelink, err), nil
	}

	in.refreshDesktop(ctx, res)

	res.State = StateInstalled
	res.Step = StepRefresh

	return res, nil
}
