package output

import (
	"fmt"

	"github.com/fatih/color"
)

// Check states shown by the CLI
const (
	StateCurrent  = "current"
	StateOutdated = "outdated"
	StateUpdated  = "updated"
	StateFailed   = "failed"
)

var (
	// State colors
	Current  = color.New(color.Faint)
	Outdated = color.New(color.FgYellow)
	Updated  = color.New(color.FgGreen)
	Failed   = color.New(color.FgRed)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Project = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// StateColor returns the appropriate color for a check state
func StateColor(state string) *color.Color {
	switch state {
	case StateCurrent:
		return Current
	case StateOutdated:
		return Outdated
	case StateUpdated:
		return Updated
	case StateFailed:
		return Failed
	default:
		return color.New(color.Reset)
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// FormatState formats a state string with appropriate color
func FormatState(state string) string {
	return StateColor(state).Sprintf("[%s]", state)
}

// FormatTransition formats a version change, or a single version when unchanged
func FormatTransition(from, to string) string {
	if from == to || to == "" {
		return Dim.Sprint(from)
	}
	return fmt.Sprintf("%s → %s", Dim.Sprint(from), Updated.Sprint(to))
}
