package ui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender uses notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender uses osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier prints a message and, when enabled, also raises a desktop
// notification. Sending failures are ignored.
type Notifier struct {
	out    io.Writer
	sender NotificationSender
}

// NewNotifier creates a notifier. Desktop notifications are only sent when
// desktop is true and the platform is supported.
func NewNotifier(out io.Writer, desktop bool) *Notifier {
	if out == nil {
		out = Output
	}
	n := &Notifier{out: out}
	if !desktop {
		return n
	}

	switch runtime.GOOS {
	case "linux":
		n.sender = &LinuxNotificationSender{}
	case "darwin":
		n.sender = &MacOSNotificationSender{}
	}
	return n
}

// WithSender replaces the desktop sender
func (n *Notifier) WithSender(sender NotificationSender) *Notifier {
	n.sender = sender
	return n
}

// SendSuccess reports a finished run
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

// SendError reports a failed run
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}
