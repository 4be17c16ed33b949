//go:build integration

package integration_test

import (
	"net"
	"os"
	"sync"
	"testing"

	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/agentx-labs/emuscan/internal/hostenv"
	"github.com/agentx-labs/emuscan/internal/platform"
	"github.com/rs/zerolog"
)

func newRegistry(t *testing.T, checker discovery.Checker) *discovery.Registry {
	t.Helper()
	dirs := hostenv.DiscoveryDirectories(hostenv.Current())
	return discovery.NewRegistry(dirs, checker, zerolog.Nop())
}

var processChecker = discovery.ProcessChecker{Exists: platform.ProcessExists}

// TestEmulatorLifecycle follows one emulator from start to exit:
// discovered while running, cleaned up after it dies.
func TestEmulatorLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	emu := startFakeEmulator(t)
	pid := emu.Process.Pid
	path := writeDescriptor(t, env.DiscoveryDir, pid, 5554, 0)

	r := newRegistry(t, processChecker)
	if n := r.Available(); n != 1 {
		t.Fatalf("Available() = %d, want 1", n)
	}
	h, ok := r.FindByPID(pid)
	if !ok {
		t.Fatalf("FindByPID(%d) not found", pid)
	}
	if h.Name() != "emulator-5554" {
		t.Errorf("Name() = %q, want emulator-5554", h.Name())
	}
	if !h.IsAlive() {
		t.Error("IsAlive() = false for a running process")
	}

	stopFakeEmulator(t, emu)

	if h.IsAlive() {
		t.Error("IsAlive() should re-check and see the process is gone")
	}
	assertFileExists(t, path)
	if n := r.Available(); n != 0 {
		t.Errorf("Available() after exit = %d, want 0", n)
	}
	assertFileNotExists(t, path)
}

// TestTwoEmulatorsAndDefault runs two stand-ins and checks the default is
// the one with the lower pid.
func TestTwoEmulatorsAndDefault(t *testing.T) {
	env := setupTestEnv(t)
	a := startFakeEmulator(t)
	b := startFakeEmulator(t)
	writeDescriptor(t, env.DiscoveryDir, a.Process.Pid, 5554, 0)
	writeDescriptor(t, env.DiscoveryDir, b.Process.Pid, 5556, 0)

	r := newRegistry(t, processChecker)
	if n := r.Available(); n != 2 {
		t.Fatalf("Available() = %d, want 2", n)
	}

	lowest := a.Process.Pid
	if b.Process.Pid < lowest {
		lowest = b.Process.Pid
	}
	h, ok := discovery.DefaultEmulator(r, discovery.Selector{})
	if !ok {
		t.Fatal("DefaultEmulator found nothing")
	}
	if h.PID() != lowest {
		t.Errorf("default pid = %d, want lowest %d", h.PID(), lowest)
	}

	h, ok = discovery.DefaultEmulator(r, discovery.Selector{Preferred: "emulator-5556"})
	if !ok || h.PID() != b.Process.Pid {
		t.Errorf("preferred emulator-5556 not selected, got %v", h)
	}
}

// TestProbeAgainstListener uses a real TCP listener as the gRPC port.
func TestProbeAgainstListener(t *testing.T) {
	env := setupTestEnv(t)

	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	path := writeDescriptor(t, env.DiscoveryDir, os.Getpid(), 5554, port)
	r := newRegistry(t, discovery.ProbeChecker{Process: processChecker})
	if n := r.Available(); n != 1 {
		t.Fatalf("Available() with listener = %d, want 1", n)
	}

	ln.Close()
	if n := r.Available(); n != 0 {
		t.Errorf("Available() after listener closed = %d, want 0", n)
	}
	// The process is still running, so its descriptor stays.
	assertFileExists(t, path)
}

// TestConcurrentScannersShareCleanup has several registries race to delete
// the same stale descriptors. Losing the race must not matter.
func TestConcurrentScannersShareCleanup(t *testing.T) {
	env := setupTestEnv(t)
	emu := startFakeEmulator(t)
	pid := emu.Process.Pid
	stopFakeEmulator(t, emu)
	path := writeDescriptor(t, env.DiscoveryDir, pid, 5554, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := newRegistry(t, processChecker)
			if n := r.Available(); n != 0 {
				t.Errorf("Available() = %d, want 0", n)
			}
		}()
	}
	wg.Wait()
	assertFileNotExists(t, path)
}

// TestHalfWrittenDescriptorSurvives models an emulator that has created its
// descriptor but not finished writing it.
func TestHalfWrittenDescriptorSurvives(t *testing.T) {
	env := setupTestEnv(t)
	emu := startFakeEmulator(t)
	path := env.DiscoveryDir + string(os.PathSeparator) + discovery.DescriptorFileName(emu.Process.Pid)
	writeFile(t, path, "port.serial=5554\nport.a")

	r := newRegistry(t, processChecker)
	if n := r.Available(); n != 0 {
		t.Errorf("Available() = %d, want 0", n)
	}
	assertFileExists(t, path)

	writeDescriptor(t, env.DiscoveryDir, emu.Process.Pid, 5554, 0)
	if n := r.Available(); n != 1 {
		t.Errorf("Available() once complete = %d, want 1", n)
	}
}
