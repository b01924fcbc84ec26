package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Dim     = color.New(color.Faint)

	// Structural colors
	Path       = color.New(color.FgBlue, color.Bold)
	OldVersion = color.New(color.FgYellow)
	NewVersion = color.New(color.FgGreen, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// PrintSuccess prints a success line to w
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	Success.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintError prints an error line to w
func PrintError(w io.Writer, format string, args ...interface{}) {
	Error.Fprintf(w, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning line to w
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	Warning.Fprintf(w, "⚠ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// FormatPath formats a manifest path
func FormatPath(p string) string {
	return Path.Sprint(p)
}

// FormatVersionChange renders "old → new", or "new (unchanged)" when both match
func FormatVersionChange(old, next string) string {
	if old == next {
		return fmt.Sprintf("%s %s", NewVersion.Sprint(next), Dim.Sprint("(unchanged)"))
	}
	return fmt.Sprintf("%s → %s", OldVersion.Sprint(old), NewVersion.Sprint(next))
}
