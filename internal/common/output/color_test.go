package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestVersionChangeColors tests that old and new versions get distinct colors
func TestVersionChangeColors(t *testing.T) {
	color.NoColor = false
	defer NoColor()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	versionGen := gen.RegexMatch(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}$`)

	properties.Property("changed versions show yellow old and green new", prop.ForAll(
		func(old, next string) bool {
			if old == next {
				return true
			}
			s := FormatVersionChange(old, next)
			return strings.Contains(s, "\x1b[33m"+old) &&
				strings.Contains(s, "\x1b[32;1m"+next) &&
				strings.Contains(s, "→")
		},
		versionGen,
		versionGen,
	))

	properties.Property("equal versions are marked unchanged", prop.ForAll(
		func(v string) bool {
			s := FormatVersionChange(v, v)
			return strings.Contains(s, v) && strings.Contains(s, "(unchanged)") && !strings.Contains(s, "→")
		},
		versionGen,
	))

	properties.TestingRun(t)
}

// TestNoColorDisablesANSICodes tests that --no-color strips escape sequences
func TestNoColorDisablesANSICodes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Sprintf contains no ANSI codes when NoColor is set", prop.ForAll(
		func(text string) bool {
			NoColor()
			colors := []*color.Color{Success, Warning, Error, Dim, Path, OldVersion, NewVersion}
			for _, c := range colors {
				if strings.Contains(Sprintf(c, "%s", text), "\x1b[") {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("FormatPath and FormatVersionChange are plain when NoColor is set", prop.ForAll(
		func(p, old, next string) bool {
			NoColor()
			return FormatPath(p) == p &&
				!strings.Contains(FormatVersionChange(old, next), "\x1b[")
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestPrintHelpersWriteToGivenWriter(t *testing.T) {
	NoColor()

	var buf bytes.Buffer
	PrintSuccess(&buf, "updated %s", "Cargo.toml")
	PrintWarning(&buf, "odd %s", "version")
	PrintError(&buf, "failed %d", 2)

	want := "✓ updated Cargo.toml\n⚠ odd version\n✗ failed 2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
