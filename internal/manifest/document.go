// Package manifest loads Cargo manifests, updates their package version and
// writes them back.
//
// Parsing and semantic checks go through BurntSushi/toml. Writing prefers an
// in-place edit of the version value, located with the go-toml/v2 parser, so
// that comments, key order and whitespace survive; when that edit cannot be
// verified the whole document is re-encoded instead.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/obentoo/cratebump/internal/common/logger"
)

const (
	packageKey = "package"
	versionKey = "version"
)

// Document is a parsed manifest. It is created per file, mutated at most
// once and discarded after it has been written.
type Document struct {
	path    string
	raw     []byte
	data    map[string]any
	version string
	changed bool
}

// Load opens path, reads it fully and parses it.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %w", ErrManifestNotFound, err)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses data as the contents of the manifest at path. The path is
// only used for diagnostics and by Save.
func Parse(path string, data []byte) (*Document, error) {
	var tree map[string]any
	if _, err := toml.Decode(string(data), &tree); err != nil {
		perr := &ParseError{Path: path, Err: err}
		var tomlErr toml.ParseError
		if errors.As(err, &tomlErr) {
			perr.Line = tomlErr.Position.Line
		}
		return nil, perr
	}
	if tree == nil {
		tree = make(map[string]any)
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{path: path, raw: raw, data: tree}, nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

func (d *Document) packageTable() (map[string]any, error) {
	v, ok := d.data[packageKey]
	if !ok {
		return nil, &MissingFieldError{
			Path:   d.path,
			Key:    []string{packageKey},
			Reason: "no [package] table",
		}
	}
	table, ok := v.(map[string]any)
	if !ok {
		return nil, &MissingFieldError{
			Path:   d.path,
			Key:    []string{packageKey},
			Reason: fmt.Sprintf("package is %s, not a table", kindOf(v)),
		}
	}
	return table, nil
}

// Version returns the current value of package.version. Non-string scalars
// are formatted with fmt.
func (d *Document) Version() (string, error) {
	table, err := d.packageTable()
	if err != nil {
		return "", err
	}
	v, ok := table[versionKey]
	if !ok {
		return "", &MissingFieldError{
			Path:   d.path,
			Key:    []string{packageKey, versionKey},
			Reason: "no version key in [package]",
		}
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case map[string]any, []any, []map[string]any:
		return "", &MissingFieldError{
			Path:   d.path,
			Key:    []string{packageKey, versionKey},
			Reason: fmt.Sprintf("version is %s, not a scalar", kindOf(v)),
		}
	default:
		return fmt.Sprint(x), nil
	}
}

// SetVersion replaces package.version with v exactly as given. The package
// table and its version key must already exist.
func (d *Document) SetVersion(v string) error {
	if !utf8.ValidString(v) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	if _, err := d.Version(); err != nil {
		return err
	}

	table, _ := d.packageTable()
	table[versionKey] = v
	d.version = v
	d.changed = true
	return nil
}

// Bytes renders the document. An unchanged document renders as the exact
// bytes it was parsed from.
func (d *Document) Bytes() ([]byte, error) {
	if !d.changed {
		out := make([]byte, len(d.raw))
		copy(out, d.raw)
		return out, nil
	}

	if out, ok := d.splice(); ok {
		return out, nil
	}
	logger.Debug("%s: in-place edit not possible, re-encoding the whole document", d.path)
	return d.encode()
}

// Save writes the rendered document back to its path. Nothing is written
// when the rendered bytes equal the bytes that were loaded.
func (d *Document) Save() error {
	out, err := d.Bytes()
	if err != nil {
		return err
	}
	if bytes.Equal(out, d.raw) {
		logger.Debug("%s: already up to date", d.path)
		return nil
	}
	if err := WriteFile(d.path, out); err != nil {
		return err
	}
	d.raw = out
	return nil
}

// splice replaces the version value in the original bytes and checks the
// result decodes to the expected tree.
func (d *Document) splice() ([]byte, bool) {
	start, end, ok := locateVersion(d.raw)
	if !ok {
		return nil, false
	}

	var out bytes.Buffer
	out.Grow(len(d.raw) + len(d.version))
	out.Write(d.raw[:start])
	out.WriteString(quoteBasic(d.version))
	out.Write(d.raw[end:])

	var got map[string]any
	if _, err := toml.Decode(out.String(), &got); err != nil {
		return nil, false
	}
	if !sameTree(got, d.data) {
		return nil, false
	}
	return out.Bytes(), true
}

func (d *Document) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(d.data); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", d.path, err)
	}
	return buf.Bytes(), nil
}

func kindOf(v any) string {
	switch v.(type) {
	case map[string]any:
		return "a table"
	case []any, []map[string]any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int64:
		return "an integer"
	case float64:
		return "a float"
	default:
		return fmt.Sprintf("a %T", v)
	}
}
