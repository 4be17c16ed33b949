package discovery

import (
	"fmt"
	"net"
	"strconv"
)

// Handle references one emulator, either discovered from a descriptor or
// built by hand from a host:port endpoint. Handles are immutable; IsAlive
// re-queries liveness instead of caching it.
type Handle struct {
	desc     Descriptor
	endpoint string // manual handles only
	checker  Checker
}

func newDiscovered(d Descriptor, checker Checker) Handle {
	return Handle{desc: d, checker: checker}
}

func newManual(endpoint string) Handle {
	return Handle{endpoint: endpoint}
}

// Connection builds a manual handle for a host:port endpoint without
// scanning any discovery directory.
func Connection(endpoint string) (Handle, error) {
	host, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		return Handle{}, fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}
	if host == "" {
		return Handle{}, fmt.Errorf("parsing endpoint %q: missing host", endpoint)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return Handle{}, fmt.Errorf("parsing endpoint %q: invalid port %q", endpoint, port)
	}
	return newManual(endpoint), nil
}

// IsManual reports whether the handle was built from an endpoint.
func (h Handle) IsManual() bool { return h.endpoint != "" }

// PID returns the emulator process id, or 0 for manual handles.
func (h Handle) PID() int { return h.desc.PID }

// Name returns emulator-<serial port> for discovered handles and the
// endpoint for manual ones.
func (h Handle) Name() string {
	if h.IsManual() {
		return h.endpoint
	}
	return "emulator-" + strconv.Itoa(h.desc.SerialPort)
}

// Endpoint returns the control-channel address: the endpoint of a manual
// handle, or localhost:<grpc.port> for a discovered one. It is empty when the
// emulator advertised no gRPC port.
func (h Handle) Endpoint() string {
	if h.IsManual() {
		return h.endpoint
	}
	if !h.desc.HasGRPC() {
		return ""
	}
	return net.JoinHostPort("localhost", strconv.Itoa(h.desc.GRPCPort))
}

// Descriptor returns the descriptor a discovered handle was built from.
func (h Handle) Descriptor() Descriptor { return h.desc }

// IsAlive re-checks liveness now. Manual handles are alive when their
// endpoint accepts a TCP connection.
func (h Handle) IsAlive() bool {
	if h.IsManual() {
		return probe(nil, DefaultProbeTimeout, h.endpoint)
	}
	if h.checker == nil {
		return false
	}
	return h.checker.Alive(h.desc)
}

// Equal reports structural equality. Manual handles compare by endpoint
// string; discovered handles by pid and port set.
func (h Handle) Equal(other Handle) bool {
	if h.IsManual() || other.IsManual() {
		return h.endpoint == other.endpoint
	}
	return h.desc.PID == other.desc.PID &&
		h.desc.SerialPort == other.desc.SerialPort &&
		h.desc.ADBPort == other.desc.ADBPort &&
		h.desc.GRPCPort == other.desc.GRPCPort
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	if h.IsManual() {
		return h.endpoint
	}
	return fmt.Sprintf("%s (pid %d, avd %s)", h.Name(), h.desc.PID, h.desc.AVDName)
}
