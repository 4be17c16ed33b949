package discovery

import (
	"net"
	"strconv"
	"time"
)

// DefaultProbeTimeout bounds the control-channel dial made by ProbeChecker.
const DefaultProbeTimeout = 500 * time.Millisecond

// Checker decides whether the emulator a descriptor describes is running.
// Implementations only observe; they never touch the descriptor file.
type Checker interface {
	Alive(d Descriptor) bool
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(d Descriptor) bool

// Alive calls f(d).
func (f CheckerFunc) Alive(d Descriptor) bool { return f(d) }

// Status is the verdict on a descriptor during a scan. Only StatusExited
// allows the registry to delete the descriptor file.
type Status int

const (
	// StatusExited means the process that wrote the descriptor is gone.
	StatusExited Status = iota
	// StatusUnreachable means the process runs but is not serving yet.
	StatusUnreachable
	// StatusRunning means the emulator is usable.
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusExited:
		return "exited"
	case StatusUnreachable:
		return "unreachable"
	case StatusRunning:
		return "running"
	}
	return "unknown"
}

// StatusChecker is implemented by checkers that can tell a process that has
// exited apart from one that is running but not reachable.
type StatusChecker interface {
	Checker
	Status(d Descriptor) Status
}

// StatusOf returns c's verdict on d. A plain Checker has no middle ground,
// so a false Alive is taken as an exited process.
func StatusOf(c Checker, d Descriptor) Status {
	if sc, ok := c.(StatusChecker); ok {
		return sc.Status(d)
	}
	if c.Alive(d) {
		return StatusRunning
	}
	return StatusExited
}

// Fixed-verdict checkers, mostly useful in tests.
var (
	AlwaysAlive Checker = CheckerFunc(func(Descriptor) bool { return true })
	AlwaysDead  Checker = CheckerFunc(func(Descriptor) bool { return false })
)

// ProcessChecker reports a descriptor alive when its process exists.
type ProcessChecker struct {
	Exists func(pid int) bool
}

// Alive reports whether the descriptor's process exists on this host.
func (c ProcessChecker) Alive(d Descriptor) bool {
	if c.Exists == nil || d.PID <= 0 {
		return false
	}
	return c.Exists(d.PID)
}

// DialFunc opens a connection to address within timeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// ProbeChecker corroborates process existence with a TCP dial against the
// advertised gRPC port. Descriptors without a gRPC port fall back to the
// process check alone.
type ProbeChecker struct {
	Process Checker
	Timeout time.Duration
	Dial    DialFunc
}

// Alive reports whether d's process exists and its gRPC port accepts a
// connection.
func (c ProbeChecker) Alive(d Descriptor) bool {
	return c.Status(d) == StatusRunning
}

// Status runs the process check first and only dials when it passes. A
// refused dial yields StatusUnreachable: a booting emulator writes its
// descriptor before it listens.
func (c ProbeChecker) Status(d Descriptor) Status {
	if c.Process != nil && StatusOf(c.Process, d) == StatusExited {
		return StatusExited
	}
	if !d.HasGRPC() {
		return StatusRunning
	}
	if !probe(c.Dial, c.Timeout, net.JoinHostPort("localhost", strconv.Itoa(d.GRPCPort))) {
		return StatusUnreachable
	}
	return StatusRunning
}

func probe(dial DialFunc, timeout time.Duration, address string) bool {
	if dial == nil {
		dial = net.DialTimeout
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	conn, err := dial("tcp", address, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
