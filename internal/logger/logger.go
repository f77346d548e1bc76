package logger

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	gray   = color.New(color.FgHiBlack).SprintFunc()
	blue   = color.New(color.FgBlue).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	purple = color.New(color.FgMagenta).SprintfFunc()
)

func timestamp() string {
	return gray("[" + time.Now().Format("15:04:05") + "]")
}

// Info logs a general message (blue).
func Info(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", timestamp(), blue(message, args...))
}

// Success logs a success (green).
func Success(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", timestamp(), green("✓ "+message, args...))
}

// Warning logs a warning (yellow).
func Warning(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", timestamp(), yellow("⚠ "+message, args...))
}

// Error logs an error (red).
func Error(message string, args ...interface{}) {
	fmt.Printf("%s %s\n", timestamp(), red("✗ "+message, args...))
}

// Request logs an HTTP request with its status and duration.
func Request(method, path string, statusCode int, duration time.Duration) {
	status := green("%d", statusCode)
	switch {
	case statusCode >= 500:
		status = red("%d", statusCode)
	case statusCode >= 400:
		status = yellow("%d", statusCode)
	}

	var durationStr string
	switch {
	case duration < time.Millisecond:
		durationStr = fmt.Sprintf("%dµs", duration.Microseconds())
	case duration < time.Second:
		durationStr = fmt.Sprintf("%dms", duration.Milliseconds())
	default:
		durationStr = fmt.Sprintf("%.2fs", duration.Seconds())
	}

	fmt.Printf("%s %s %-40s [%s] %s\n",
		timestamp(), purple("%-6s", method), path, status, gray("("+durationStr+")"))
}
