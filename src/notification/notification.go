// Package notification shows short user-facing messages.
package notification

import "log"

const maxMessageLen = 300

// Info shows a non-blocking informational message.
func Info(title, message string) {
	message = truncate(message)
	log.Printf("Notification: %s: %s", title, message)
	go showInfo(title, message)
}

// ShowBlockingError displays an error and returns once the user dismisses it.
func ShowBlockingError(title, message string) {
	message = truncate(message)
	log.Printf("Notification: %s: %s", title, message)
	showError(title, message)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen]) + "..."
}
