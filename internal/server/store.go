// store.go - Upload storage backends.
//
// A Store holds the files written by the upload handler and read back by the
// static responder under /data/. DiskStore is the default; MinioStore lives in
// minio.go.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Store persists uploaded files by name. Get reports missing files with an
// error wrapping fs.ErrNotExist.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
	Ping(ctx context.Context) error
}

// DiskStore keeps uploads as flat files in a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if it is missing.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (d *DiskStore) Dir() string {
	return d.dir
}

// Put writes data to dir/name, replacing any existing file. There is no
// temp-file rename, so a crash mid-write can leave a partial file.
func (d *DiskStore) Put(_ context.Context, name string, data []byte, _ string) error {
	return os.WriteFile(filepath.Join(d.dir, name), data, 0o644)
}

// Get reads dir/name. The name is joined as-is: ".." segments are resolved
// by the join and are not rejected.
func (d *DiskStore) Get(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.dir, name))
}

// Ping checks that the uploads directory still exists.
func (d *DiskStore) Ping(_ context.Context) error {
	info, err := os.Stat(d.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", d.dir)
	}
	return nil
}

// codedError carries a short machine-readable code for a storage failure.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.code + ": " + e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

var errnoCodes = map[syscall.Errno]string{
	syscall.EACCES:       "EACCES",
	syscall.EPERM:        "EPERM",
	syscall.EISDIR:       "EISDIR",
	syscall.ENOTDIR:      "ENOTDIR",
	syscall.ELOOP:        "ELOOP",
	syscall.ENAMETOOLONG: "ENAMETOOLONG",
	syscall.EMFILE:       "EMFILE",
	syscall.ENFILE:       "ENFILE",
	syscall.EIO:          "EIO",
	syscall.EBUSY:        "EBUSY",
	syscall.ENOSPC:       "ENOSPC",
	syscall.EROFS:        "EROFS",
	syscall.EINVAL:       "EINVAL",
}

// errorCode returns the short code reported to clients in "Error: <code>".
func errorCode(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if code, ok := errnoCodes[errno]; ok {
			return code
		}
		return fmt.Sprintf("ERRNO%d", int(errno))
	}

	if errors.Is(err, fs.ErrNotExist) {
		return "ENOENT"
	}
	if errors.Is(err, fs.ErrPermission) {
		return "EACCES"
	}
	return "UNKNOWN"
}
