// Package discovery locates running emulators on the local host. Every
// emulator writes a pid_<N>.ini descriptor into a discovery directory when it
// starts. A Registry scans those directories on every query, keeps the
// descriptors whose process is still alive, and deletes the ones left behind
// by emulators that have exited. Malformed descriptors are skipped but never
// deleted, since they may belong to an emulator that is still writing them.
package discovery
