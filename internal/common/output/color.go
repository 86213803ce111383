package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Build state colors
	Built   = color.New(color.FgGreen)
	Failed  = color.New(color.FgRed)
	Skipped = color.New(color.FgMagenta)
	Pending = color.New(color.FgYellow)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header     = color.New(color.FgWhite, color.Bold)
	Repository = color.New(color.FgCyan, color.Bold)
	Package    = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// StateColor returns the color used for a build state
func StateColor(state string) *color.Color {
	switch state {
	case "built":
		return Built
	case "failed":
		return Failed
	case "skipped":
		return Skipped
	case "pending":
		return Pending
	default:
		return color.New(color.Reset)
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Printf("⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// Sprintf returns a colored string without printing
func Sprintf(c *color.Color, format string, args ...interface{}) string {
	return c.Sprintf(format, args...)
}

// Sprint returns a colored string without printing
func Sprint(c *color.Color, a ...interface{}) string {
	return c.Sprint(a...)
}

// Fprintf prints with color to w
func Fprintf(w io.Writer, c *color.Color, format string, args ...interface{}) {
	c.Fprintf(w, format, args...)
}

// FormatState formats a build state with its color, e.g. "[failed]"
func FormatState(state string) string {
	return StateColor(state).Sprintf("[%s]", state)
}

// FormatPackage formats a repo/package name with color
func FormatPackage(repo, pkg string) string {
	if repo != "" {
		return Package.Sprintf("%s/%s", repo, pkg)
	}
	return Package.Sprint(pkg)
}

// Box prints a boxed message
func Box(title, content string) {
	fmt.Println()
	Header.Println("┌─ " + title + " ─")
	fmt.Println("│")
	fmt.Println("│  " + content)
	fmt.Println("│")
	Header.Println("└────────────────")
	fmt.Println()
}
