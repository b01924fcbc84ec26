package manifest

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// WriteFile replaces the whole contents of the existing file at path with
// data. The file keeps its mode. The handle is synced and closed before
// WriteFile returns; a failed close is reported like a failed write.
func WriteFile(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return newWriteError(path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newWriteError(path, cerr)
		}
	}()

	if _, werr := f.Write(data); werr != nil {
		return newWriteError(path, werr)
	}
	if serr := f.Sync(); serr != nil {
		return newWriteError(path, serr)
	}
	return nil
}

func newWriteError(path string, err error) *WriteError {
	werr := &WriteError{Path: path, Err: err}
	switch {
	case errors.Is(err, fs.ErrPermission):
		werr.Kind = ErrWritePermission
	case errors.Is(err, syscall.ENOSPC):
		werr.Kind = ErrDiskFull
	}
	return werr
}
