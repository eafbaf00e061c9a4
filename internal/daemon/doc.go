// Package daemon routes host events to audio notifications.
package daemon
