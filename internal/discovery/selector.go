package discovery

import "strconv"

// Selector picks the emulator to use when the caller named none.
//
// A live handle matching Preferred (by name such as "emulator-5556", or by
// decimal pid) wins. Otherwise the handle with the lowest pid is chosen, so
// the result does not depend on directory listing order.
type Selector struct {
	Preferred string
}

// Select returns the chosen handle, or false when handles is empty.
func (s Selector) Select(handles []Handle) (Handle, bool) {
	if len(handles) == 0 {
		return Handle{}, false
	}
	for _, h := range handles {
		if s.Matches(h) {
			return h, true
		}
	}
	best := handles[0]
	for _, h := range handles[1:] {
		if h.PID() < best.PID() {
			best = h
		}
	}
	return best, true
}

// Matches reports whether h is the preferred emulator. An empty Preferred
// matches nothing.
func (s Selector) Matches(h Handle) bool {
	if s.Preferred == "" {
		return false
	}
	return h.Name() == s.Preferred || strconv.Itoa(h.PID()) == s.Preferred
}

// DefaultEmulator rescans r and returns the handle s selects.
func DefaultEmulator(r *Registry, s Selector) (Handle, bool) {
	return s.Select(r.Emulators())
}
