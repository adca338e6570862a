// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify tells the user a conversion run has finished.
package notify

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification is a completion message for one run.
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(n Notification) error
}
