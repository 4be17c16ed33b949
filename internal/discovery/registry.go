package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agentx-labs/emuscan/internal/platform"
	"github.com/rs/zerolog"
)

// Registry is the set of live emulators found in the configured discovery
// directories. Every query rescans; there is no background refresh.
type Registry struct {
	dirs    []string
	checker Checker
	log     zerolog.Logger

	mu      sync.Mutex
	handles map[int]Handle
}

// NewRegistry creates a registry over dirs. Earlier directories win when the
// same pid appears in more than one. A nil checker means a process existence
// check against this host.
func NewRegistry(dirs []string, checker Checker, log zerolog.Logger) *Registry {
	if checker == nil {
		checker = ProcessChecker{Exists: platform.ProcessExists}
	}
	return &Registry{
		dirs:    append([]string(nil), dirs...),
		checker: checker,
		log:     log,
		handles: make(map[int]Handle),
	}
}

// Directories returns the configured discovery directories in scan order.
func (r *Registry) Directories() []string {
	return append([]string(nil), r.dirs...)
}

// Available rescans and returns the number of live emulators.
func (r *Registry) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scan()
	return len(r.handles)
}

// FindByPID rescans and returns the emulator started by pid.
func (r *Registry) FindByPID(pid int) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scan()
	h, ok := r.handles[pid]
	return h, ok
}

// FindByID is FindByPID for identifiers that arrive as strings, such as
// command-line arguments. Non-numeric identifiers never match.
func (r *Registry) FindByID(id string) (Handle, bool) {
	pid, err := ParsePID(strings.TrimSpace(id))
	if err != nil {
		return Handle{}, false
	}
	return r.FindByPID(pid)
}

// Emulators rescans and returns the live emulators ordered by pid.
func (r *Registry) Emulators() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scan()
	return r.sorted()
}

// Connection builds a manual handle; it does not scan.
func (r *Registry) Connection(endpoint string) (Handle, error) {
	return Connection(endpoint)
}

// scan replaces the handle set with the live descriptors found on disk and
// removes descriptors whose process is gone. Callers hold r.mu.
func (r *Registry) scan() {
	found := make(map[int]Handle)
	for _, dir := range r.dirs {
		for _, path := range listDescriptors(dir) {
			d, err := ReadDescriptor(path)
			if err != nil {
				// Possibly still being written by a starting emulator.
				r.log.Debug().Err(err).Str("path", path).Msg("skipping descriptor")
				continue
			}
			if _, seen := found[d.PID]; seen {
				r.log.Debug().Int("pid", d.PID).Str("path", path).Msg("duplicate descriptor")
				continue
			}
			switch StatusOf(r.checker, d) {
			case StatusExited:
				r.remove(d)
				continue
			case StatusUnreachable:
				r.log.Debug().Int("pid", d.PID).Int("grpc_port", d.GRPCPort).Msg("emulator not reachable yet")
				continue
			}
			found[d.PID] = newDiscovered(d, r.checker)
		}
	}
	r.handles = found
}

func (r *Registry) remove(d Descriptor) {
	err := os.Remove(d.Path)
	switch {
	case err == nil:
		r.log.Info().Int("pid", d.PID).Str("path", d.Path).Msg("removed stale descriptor")
	case errors.Is(err, fs.ErrNotExist):
		// Already gone; another scanner got there first.
	default:
		r.log.Warn().Err(err).Int("pid", d.PID).Str("path", d.Path).Msg("could not remove stale descriptor")
	}
}

func (r *Registry) sorted() []Handle {
	out := make([]Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID() < out[j].PID() })
	return out
}

// listDescriptors returns the pid_<N>.ini files directly inside dir. Missing
// or unreadable directories, and paths that are not directories, yield none.
func listDescriptors(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := PIDFromFileName(e.Name()); !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths
}
