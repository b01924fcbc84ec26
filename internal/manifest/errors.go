package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Error variables for manifest load, update and write failures
var (
	// ErrManifestNotFound is returned when the manifest file does not exist
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrPermissionDenied is returned when the manifest cannot be opened for reading
	ErrPermissionDenied = errors.New("permission denied reading manifest")
	// ErrMissingField is matched by every MissingFieldError
	ErrMissingField = errors.New("missing field")
	// ErrInvalidVersion is returned for version strings a TOML document cannot hold
	ErrInvalidVersion = errors.New("version is not valid UTF-8")
	// ErrWritePermission is returned when the manifest cannot be opened or written
	ErrWritePermission = errors.New("permission denied writing manifest")
	// ErrDiskFull is returned when the device has no space left for the manifest
	ErrDiskFull = errors.New("no space left on device")
)

// ParseError reports a manifest whose contents are not valid TOML.
type ParseError struct {
	Path string
	Line int // 0 when the parser did not report a position
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports that the key path to update is absent or has
// the wrong shape.
type MissingFieldError struct {
	Path   string   // manifest file
	Key    []string // key path that could not be resolved, e.g. [package version]
	Reason string
}

func (e *MissingFieldError) Error() string {
	msg := fmt.Sprintf("%s: missing field %q", e.Path, strings.Join(e.Key, "."))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrMissingField) hold for every MissingFieldError.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// WriteError reports a failure while replacing the manifest contents. Kind is
// one of ErrWritePermission, ErrDiskFull or nil for any other I/O failure.
type WriteError struct {
	Path string
	Kind error
	Err  error
}

func (e *WriteError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("writing %s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	if e.Kind != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Err}
}
