// Package model defines the core data structures for ocnotify.
package model

import "fmt"

// EventKind identifies which notification is being played.
type EventKind string

// Event kinds ocnotify reacts to.
const (
	KindPermission EventKind = "permission"
	KindCompletion EventKind = "completion"
)

// Host event types that map onto an EventKind.
const (
	HostEventPermissionUpdated = "permission.updated"
	HostEventSessionIdle       = "session.idle"
)

// Kinds returns every known event kind in a stable order.
func Kinds() []EventKind {
	return []EventKind{KindPermission, KindCompletion}
}

// ParseEventKind converts a string into an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case KindPermission, KindCompletion:
		return EventKind(s), nil
	default:
		return "", fmt.Errorf("unknown event kind %q (want %q or %q)", s, KindPermission, KindCompletion)
	}
}

// KindForHostEvent returns the event kind triggered by a host event type.
// The second return value is false for event types that are ignored.
func KindForHostEvent(eventType string) (EventKind, bool) {
	switch eventType {
	case HostEventPermissionUpdated:
		return KindPermission, true
	case HostEventSessionIdle:
		return KindCompletion, true
	default:
		return "", false
	}
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	return string(k)
}
