// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"os/exec"
	"runtime"
	"strings"
)

// commandRunner runs an external notification command; tests replace it.
type commandRunner func(name string, args ...string) error

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// DesktopNotifier sends desktop notifications through notify-send on Linux
// and osascript on macOS. Other platforms are a no-op.
type DesktopNotifier struct {
	goos string
	run  commandRunner
}

// NewDesktopNotifier creates a notifier for the current platform.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{goos: runtime.GOOS, run: runCommand}
}

// Send sends a desktop notification
func (d *DesktopNotifier) Send(n Notification) error {
	switch d.goos {
	case "darwin":
		script := `display notification ` + appleQuote(n.Message) + ` with title ` + appleQuote(n.Title)
		return d.run("osascript", "-e", script)
	case "linux":
		args := []string{"--icon", IconForType(n.Type)}
		if n.Type == NotifyError {
			args = append(args, "--urgency", "critical")
		}
		args = append(args, n.Title, n.Message)
		return d.run("notify-send", args...)
	default:
		return nil
	}
}

// appleQuote renders s as an AppleScript string literal.
func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// IconForType returns an icon name for the notification type
func IconForType(t NotificationType) string {
	switch t {
	case NotifySuccess:
		return "dialog-positive"
	case NotifyWarning:
		return "dialog-warning"
	case NotifyError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}
