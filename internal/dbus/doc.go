// Package dbus exports the io.github.jmylchreest.OCNotify object on the
// session bus. Hosts that cannot write to ocnotify's stdin or an events file
// call Emit, Permission or Completion to report events, and Mechanisms to see
// what ocnotify detected.
package dbus
