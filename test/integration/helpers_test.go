//go:build integration

package integration_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// testEnv holds isolated discovery state for one test.
type testEnv struct {
	DiscoveryDir string // EMUSCAN_DISCOVERY_PATH
	ConfigPath   string // EMUSCAN_CONFIG, never created
}

// setupTestEnv creates a temp discovery directory and points the environment
// at it so nothing reads the developer's real emulator state.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		DiscoveryDir: t.TempDir(),
		ConfigPath:   filepath.Join(t.TempDir(), "config.yaml"),
	}
	t.Setenv("EMUSCAN_DISCOVERY_PATH", env.DiscoveryDir)
	t.Setenv("EMUSCAN_CONFIG", env.ConfigPath)
	t.Setenv("ANDROID_SERIAL", "")
	return env
}

// startFakeEmulator starts a long-running child process to stand in for an
// emulator and returns it. The process is killed when the test ends.
func startFakeEmulator(t *testing.T) *exec.Cmd {
	t.Helper()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "ping -n 60 127.0.0.1 > NUL")
	} else {
		cmd = exec.Command("sleep", "60")
	}
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start stand-in process: %v", err)
	}
	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})
	return cmd
}

// stopFakeEmulator kills the child and reaps it so its pid no longer exists.
func stopFakeEmulator(t *testing.T, cmd *exec.Cmd) {
	t.Helper()
	if err := cmd.Process.Kill(); err != nil {
		t.Fatalf("killing pid %d: %v", cmd.Process.Pid, err)
	}
	_ = cmd.Wait()
}

// writeDescriptor writes pid_<pid>.ini the way the emulator does.
func writeDescriptor(t *testing.T, dir string, pid, serial, grpc int) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("pid_%d.ini", pid))
	content := fmt.Sprintf("port.serial=%d\nport.adb=%d\navd.name=Q\navd.dir=/home/.android/avd/Q.avd\navd.id=Q\ncmdline=unused\n",
		serial, serial+1)
	if grpc > 0 {
		content += fmt.Sprintf("grpc.port=%d\n", grpc)
	}
	writeFile(t, path, content)
	return path
}

// writeFile creates a file with the given content, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the path does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// assertFileNotExists fails the test if the path exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}
