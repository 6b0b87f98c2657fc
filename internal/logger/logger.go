// Package logger provides colored console progress output for the
// frontier CLI. It has no concept of log levels or structured fields —
// just short, tagged lines a human watches scroll by during a run.
package logger

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + colorReset
}

func tagged(color, tag, msg string) {
	fmt.Printf("%s %s\n", paint(color, "["+tag+"]"), msg)
}

// Info prints a neutral progress line under tag.
func Info(tag, msg string) {
	tagged(colorCyan, tag, msg)
}

// Success prints a positive-outcome line under tag.
func Success(tag, msg string) {
	tagged(colorGreen, tag, msg)
}

// Warn prints a recoverable-problem line under tag.
func Warn(tag, msg string) {
	tagged(colorYellow, tag, msg)
}

// Error prints a failure line under tag.
func Error(tag, msg string) {
	tagged(colorRed, tag, msg)
}

// Banner prints the startup banner with the given version string.
func Banner(version string) {
	title := "frontier"
	if version != "" {
		title = fmt.Sprintf("frontier %s", version)
	}
	fmt.Println(paint(colorBold, title))
}

// Section prints a section header separating phases of a run.
func Section(title string) {
	fmt.Println()
	fmt.Println(paint(colorBold, "== "+title+" =="))
}

// Stats prints one human-readable key/value line, grouping integers with
// thousands separators so large candidate/record counts stay legible.
func Stats(key string, value any) {
	switch v := value.(type) {
	case int:
		fmt.Printf("  %-22s %s\n", key+":", humanize.Comma(int64(v)))
	case int64:
		fmt.Printf("  %-22s %s\n", key+":", humanize.Comma(v))
	case uint64:
		fmt.Printf("  %-22s %s\n", key+":", humanize.Comma(int64(v)))
	default:
		fmt.Printf("  %-22s %v\n", key+":", v)
	}
}

// Bytes prints a human-readable byte size line, e.g. for peak hull
// working-set memory.
func Bytes(key string, n uint64) {
	fmt.Printf("  %-22s %s\n", key+":", humanize.Bytes(n))
}
