// Package platform wraps the OS-specific primitives discovery needs. On Unix
// systems process existence is probed with signal 0; on Windows the process
// is opened and its exit code inspected.
package platform
