// Package hostenv decides where running emulators advertise themselves on
// this host. All lookups go through an explicit Env value so callers and
// tests control the environment instead of reading process-wide state.
package hostenv

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/agentx-labs/emuscan/internal/branding"
)

// Directory names and environment variables of the emulator convention.
const (
	AVDDir     = "avd"
	RunningDir = "running"

	EnvXDGRuntimeDir       = "XDG_RUNTIME_DIR"
	EnvLocalAppData        = "LOCALAPPDATA"
	EnvAndroidEmulatorHome = "ANDROID_EMULATOR_HOME"
	EnvAndroidSerial       = "ANDROID_SERIAL"
)

// Env is the slice of host state the discovery policy depends on.
type Env struct {
	GOOS    string
	HomeDir string
	TempDir string
	UID     int
	Getenv  func(string) string
}

// Current captures the environment of the running process.
func Current() Env {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Env{
		GOOS:    runtime.GOOS,
		HomeDir: home,
		TempDir: os.TempDir(),
		UID:     os.Getuid(),
		Getenv:  os.Getenv,
	}
}

func (e Env) getenv(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

// DiscoveryPathVar returns the variable that replaces the platform policy,
// e.g. EMUSCAN_DISCOVERY_PATH.
func DiscoveryPathVar() string {
	return branding.EnvVar("DISCOVERY_PATH")
}

// DiscoveryDirectories returns the directories to scan, in priority order.
// When EMUSCAN_DISCOVERY_PATH is set its list-separated entries are used
// as-is. Otherwise the platform runtime location comes first, followed by
// the emulator home.
func DiscoveryDirectories(e Env) []string {
	if v := e.getenv(DiscoveryPathVar()); v != "" {
		return dedupe(splitList(v, e.GOOS))
	}
	return dedupe([]string{
		filepath.Join(RuntimeRoot(e), AVDDir, RunningDir),
		filepath.Join(EmulatorHome(e), AVDDir, RunningDir),
	})
}

// RuntimeRoot returns the per-user runtime location the emulator writes to.
func RuntimeRoot(e Env) string {
	switch e.GOOS {
	case "linux":
		if v := e.getenv(EnvXDGRuntimeDir); v != "" {
			return v
		}
		return filepath.Join("/run", "user", strconv.Itoa(e.UID))
	case "darwin":
		return filepath.Join(e.HomeDir, "Library", "Caches", "TemporaryItems")
	case "windows":
		if v := e.getenv(EnvLocalAppData); v != "" {
			return filepath.Join(v, "Temp")
		}
		return e.TempDir
	default:
		return e.TempDir
	}
}

// EmulatorHome returns $ANDROID_EMULATOR_HOME, falling back to ~/.android.
func EmulatorHome(e Env) string {
	if v := e.getenv(EnvAndroidEmulatorHome); v != "" {
		return v
	}
	return filepath.Join(e.HomeDir, ".android")
}

// PreferredSerial returns the ANDROID_SERIAL the user exported, if any.
func PreferredSerial(e Env) string {
	return strings.TrimSpace(e.getenv(EnvAndroidSerial))
}

func splitList(v, goos string) []string {
	sep := ":"
	if goos == "windows" {
		sep = ";"
	}
	var out []string
	for _, p := range strings.Split(v, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		clean := filepath.Clean(p)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}
