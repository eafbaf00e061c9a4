// Package audio locates the sound-producing mechanisms usable on the current
// host and plays notification sounds through them.
//
// A static Registry describes every known mechanism. The Detector filters it
// for the current platform, probes each candidate's external tool and returns
// the usable ids ordered by priority, always ending with the terminal bell.
// The Player walks that list for a given event kind, translating configuration
// into per-mechanism parameters and stopping at the first success. The Manager
// ties both together behind a per-kind cooldown gate.
package audio
