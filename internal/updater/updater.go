// Package updater sets the package version of a list of Cargo manifests.
//
// Manifests are processed one at a time, in order: load, set
// package.version, write. The first failure stops the run; manifests that
// were already written stay written.
package updater

import (
	"errors"
	"fmt"
	"strings"

	"github.com/obentoo/cratebump/internal/common/config"
	"github.com/obentoo/cratebump/internal/common/logger"
	"github.com/obentoo/cratebump/internal/common/output"
	"github.com/obentoo/cratebump/internal/manifest"
	"golang.org/x/mod/semver"
)

// ErrPartialUpdate is wrapped by Run's error when at least one manifest was
// updated before the failure.
var ErrPartialUpdate = errors.New("some manifests were updated before the failure")

// Options selects the manifests a run touches.
type Options struct {
	// Manifests are updated in this order. Must be non-empty and free of
	// duplicates.
	Manifests []string
}

// FileResult describes one updated manifest.
type FileResult struct {
	Path       string
	OldVersion string
	NewVersion string
}

// Changed reports whether the version value differs from the previous one.
func (r FileResult) Changed() bool {
	return r.OldVersion != r.NewVersion
}

// Result collects the manifests a run wrote, in order.
type Result struct {
	Version string
	// Semver reports whether Version is a semantic version. It is
	// informational only; any string is written.
	Semver bool
	Files  []FileResult
}

// Run sets package.version to version in every manifest of opts. On error
// the returned Result still lists the manifests written before the failure.
func Run(version string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := config.ValidateManifests(opts.Manifests); err != nil {
		return nil, err
	}
	result := &Result{Version: version, Semver: IsSemver(version)}
	for _, path := range opts.Manifests {
		fr, err := UpdateFile(path, version)
		if err != nil {
			if len(result.Files) > 0 {
				return result, fmt.Errorf("%w: %w", ErrPartialUpdate, err)
			}
			return result, err
		}
		logger.Debug("%s: %s -> %s", fr.Path, fr.OldVersion, fr.NewVersion)
		result.Files = append(result.Files, *fr)
	}
	return result, nil
}

// UpdateFile runs the load, set and write steps for a single manifest.
func UpdateFile(path, version string) (*FileResult, error) {
	doc, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}

	old, err := doc.Version()
	if err != nil {
		return nil, err
	}
	if err := doc.SetVersion(version); err != nil {
		return nil, err
	}
	if err := doc.Save(); err != nil {
		return nil, err
	}

	return &FileResult{Path: doc.Path(), OldVersion: old, NewVersion: version}, nil
}

// IsSemver reports whether version is a full MAJOR.MINOR.PATCH semantic
// version as Cargo expects it. Shorthands such as 1.2 and a leading v are not.
func IsSemver(version string) bool {
	if !semver.IsValid("v" + version) {
		return false
	}
	core, _, _ := strings.Cut(version, "-")
	core, _, _ = strings.Cut(core, "+")
	return strings.Count(core, ".") == 2
}

// FormatResult renders a run summary, one manifest per line.
func FormatResult(r *Result) string {
	if r == nil || len(r.Files) == 0 {
		return "no manifests updated"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "set version %s in %d manifest(s)", output.Sprintf(output.NewVersion, "%s", r.Version), len(r.Files))
	if !r.Semver {
		b.WriteString(output.Sprintf(output.Dim, " (not a semantic version)"))
	}
	b.WriteString(":")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "\n  %s  %s", output.FormatPath(f.Path), output.FormatVersionChange(f.OldVersion, f.NewVersion))
	}
	return b.String()
}
