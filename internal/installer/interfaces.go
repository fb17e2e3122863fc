package installer

//go:generate mockgen -source=interfaces.go -destination=interfaces_mock.go -package=installer

import (
	"context"
	"os"
)

// Privileged performs the filesystem operations that may need root.
type Privileged interface {
	// Chown sets the owner of path.
	Chown(ctx context.Context, path string, uid, gid int) error
	// Chmod sets the mode of path, including setuid bits.
	Chmod(ctx context.Context, path string, mode os.FileMode) error
	// Move renames src to dst, copying across filesystems when needed.
	Move(ctx context.Context, src, dst string) error
	// RemoveAll removes path and everything below it.
	RemoveAll(ctx context.Context, path string) error
	// Symlink points link at target, replacing whatever link is there.
	Symlink(ctx context.Context, target, link string) error
}

// Extractor unpacks a bundle into dir and returns the extracted root.
type Extractor interface {
	Extract(ctx context.Context, artifact, dir string) (string, error)
}

// DesktopRefresher rebuilds launcher metadata for an applications directory.
type DesktopRefresher interface {
	Refresh(ctx context.Context, dir string) error
}
