//go:build !windows

package notification

// Logging in the caller is the only output on these platforms.
func showInfo(title, message string) {}

func showError(title, message string) {}
