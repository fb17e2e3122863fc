package installer

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/smykla-skalski/cursor-updater/internal/exec"
	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

const linkDirMode = 0o755

// LocalFS performs privileged operations with direct syscalls. It is used
// when the process runs as root.
type LocalFS struct{}

// NewLocalFS creates a LocalFS.
func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

// Chown implements Privileged. The error is the bare errno; callers name the
// operation and path.
func (*LocalFS) Chown(_ context.Context, path string, uid, gid int) error {
	return errors.WithStack(unix.Chown(path, uid, gid))
}

// Chmod implements Privileged. Like Chown, the error does not repeat the path.
func (*LocalFS) Chmod(_ context.Context, path string, mode os.FileMode) error {
	return errors.WithStack(unix.Chmod(path, unixMode(mode)))
}

// Move implements Privileged. Renames within a filesystem; across filesystems
// the tree is copied and the source removed, which is not atomic.
func (*LocalFS) Move(_ context.Context, src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !errors.Is(err, unix.EXDEV) {
		return errors.Wrapf(err, "moving %s to %s", src, dst)
	}

	if err := copyTree(src, dst); err != nil {
		_ = os.RemoveAll(dst)

		return errors.Wrapf(err, "copying %s to %s", src, dst)
	}

	return errors.Wrapf(os.RemoveAll(src), "removing %s after copy", src)
}

// RemoveAll implements Privileged.
func (*LocalFS) RemoveAll(_ context.Context, path string) error {
	return errors.Wrapf(os.RemoveAll(path), "removing %s", path)
}

// Symlink implements Privileged. The new link is renamed over the old one.
func (*LocalFS) Symlink(_ context.Context, target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), linkDirMode); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(link))
	}

	tmp := link + ".tmp-" + strconv.Itoa(os.Getpid())
	_ = os.Remove(tmp)

	if err := os.Symlink(target, tmp); err != nil {
		return errors.Wrapf(err, "creating link %s", tmp)
	}

	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)

		return errors.Wrapf(err, "replacing link %s", link)
	}

	return nil
}

// copyTree copies src to dst preserving modes and symlinks.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode())
		}
	})
}

//nolint:gosec // G304: paths come from the staged tree
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only file

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile drops setuid bits through the umask.
	return os.Chmod(dst, mode)
}

// SudoFS performs privileged operations through sudo.
type SudoFS struct {
	runner exec.CommandRunner
}

// NewSudoFS creates a SudoFS.
func NewSudoFS(runner exec.CommandRunner) *SudoFS {
	return &SudoFS{runner: runner}
}

// Validate refreshes the sudo credential cache, prompting for a password on
// the terminal if needed.
func (s *SudoFS) Validate(ctx context.Context) error {
	if res := s.runner.RunAttached(ctx, "sudo", "-v"); res.Failed() {
		return &PermissionError{Op: "obtaining", Path: "sudo", Err: commandError(res)}
	}

	return nil
}

func (s *SudoFS) sudo(ctx context.Context, args ...string) error {
	res := s.runner.Run(ctx, "sudo", append([]string{"-n"}, args...)...)
	if res.Failed() {
		return errors.Wrapf(commandError(res), "sudo %s", strings.Join(args, " "))
	}

	return nil
}

// Chown implements Privileged.
func (s *SudoFS) Chown(ctx context.Context, path string, uid, gid int) error {
	return s.sudo(ctx, "chown", strconv.Itoa(uid)+":"+strconv.Itoa(gid), "--", path)
}

// Chmod implements Privileged.
func (s *SudoFS) Chmod(ctx context.Context, path string, mode os.FileMode) error {
	return s.sudo(ctx, "chmod", strconv.FormatUint(uint64(unixMode(mode)), 8), "--", path)
}

// Move implements Privileged. mv falls back to copying across filesystems itself.
func (s *SudoFS) Move(ctx context.Context, src, dst string) error {
	return s.sudo(ctx, "mv", "-T", "--", src, dst)
}

// RemoveAll implements Privileged.
func (s *SudoFS) RemoveAll(ctx context.Context, path string) error {
	return s.sudo(ctx, "rm", "-rf", "--", path)
}

// Symlink implements Privileged. The parent of link is created like LocalFS does.
func (s *SudoFS) Symlink(ctx context.Context, target, link string) error {
	if err := s.sudo(ctx, "mkdir", "-p", "--", filepath.Dir(link)); err != nil {
		return err
	}

	return s.sudo(ctx, "ln", "-sfnT", "--", target, link)
}

// unixMode converts Go's mode bits to the octal mode chmod expects.
func unixMode(mode os.FileMode) uint32 {
	m := uint32(mode.Perm())

	if mode&os.ModeSetuid != 0 {
		m |= unix.S_ISUID
	}

	if mode&os.ModeSetgid != 0 {
		m |= unix.S_ISGID
	}

	if mode&os.ModeSticky != 0 {
		m |= unix.S_ISVTX
	}

	return m
}

func commandError(res exec.CommandResult) error {
	err := res.Err
	if err == nil {
		err = errors.Newf("exit status %d", res.ExitCode)
	}

	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		err = errors.Wrap(err, stderr)
	}

	return err
}

// SelectPrivileged picks the Privileged implementation for mode. Auto uses
// LocalFS only for root: the sandbox helper has to end up owned by root,
// which a writable install location alone does not allow.
func SelectPrivileged(mode config.PrivilegeMode, runner exec.CommandRunner) Privileged {
	switch mode {
	case config.PrivilegeDirect:
		return NewLocalFS()
	case config.PrivilegeSudo:
		return NewSudoFS(runner)
	default:
		if unix.Geteuid() == 0 {
			return NewLocalFS()
		}

		return NewSudoFS(runner)
	}
}
