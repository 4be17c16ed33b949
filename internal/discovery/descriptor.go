package discovery

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Descriptor file naming and the keys an emulator writes into it.
const (
	filePrefix = "pid_"
	fileSuffix = ".ini"

	KeySerialPort = "port.serial"
	KeyADBPort    = "port.adb"
	KeyGRPCPort   = "grpc.port"
	KeyAVDName    = "avd.name"
	KeyAVDDir     = "avd.dir"
	KeyAVDID      = "avd.id"
	KeyCmdline    = "cmdline"
	KeyVersion    = "emulator.version"
)

// ErrMalformed is wrapped by every error ParseDescriptor returns for content
// that cannot describe an emulator.
var ErrMalformed = errors.New("malformed descriptor")

// Descriptor is the parsed content of one discovery file.
type Descriptor struct {
	PID        int    // from the file name, not the content
	SerialPort int    // port.serial
	ADBPort    int    // port.adb
	GRPCPort   int    // grpc.port, 0 when absent
	AVDName    string // avd.name
	AVDDir     string // avd.dir
	AVDID      string // avd.id
	Cmdline    string // cmdline, optional
	Version    string // emulator.version, optional
	Path       string // file the descriptor was read from
}

// HasGRPC reports whether the emulator advertised a control channel.
func (d Descriptor) HasGRPC() bool {
	return d.GRPCPort > 0
}

// SemVer parses the advertised emulator version. It returns nil when the
// descriptor carries no version or the version is not semver-shaped.
func (d Descriptor) SemVer() *semver.Version {
	if d.Version == "" {
		return nil
	}
	v, err := semver.NewVersion(strings.TrimPrefix(d.Version, "v"))
	if err != nil {
		return nil
	}
	return v
}

// ParseDescriptor parses the key=value content of a descriptor file.
// The PID and Path fields are left zero; ReadDescriptor fills them in.
func ParseDescriptor(content []byte) (Descriptor, error) {
	values := make(map[string]string)
	sawPair := false

	scanner := bufio.NewScanner(bytes.NewReader(content))
	// cmdline can run past the default token limit; any line fits in the file.
	scanner.Buffer(nil, max(len(content)+1, bufio.MaxScanTokenSize))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		sawPair = true
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !sawPair {
		return Descriptor{}, fmt.Errorf("%w: no key=value lines", ErrMalformed)
	}

	var d Descriptor
	var err error
	if d.SerialPort, err = requiredInt(values, KeySerialPort); err != nil {
		return Descriptor{}, err
	}
	if d.ADBPort, err = requiredInt(values, KeyADBPort); err != nil {
		return Descriptor{}, err
	}
	if d.AVDName, err = requiredString(values, KeyAVDName); err != nil {
		return Descriptor{}, err
	}
	if d.AVDDir, err = requiredString(values, KeyAVDDir); err != nil {
		return Descriptor{}, err
	}
	if d.AVDID, err = requiredString(values, KeyAVDID); err != nil {
		return Descriptor{}, err
	}
	if raw, ok := values[KeyGRPCPort]; ok {
		port, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return Descriptor{}, fmt.Errorf("%w: %s=%q is not a number", ErrMalformed, KeyGRPCPort, raw)
		}
		d.GRPCPort = port
	}
	d.Cmdline = values[KeyCmdline]
	d.Version = values[KeyVersion]

	return d, nil
}

// ReadDescriptor reads and parses the descriptor at path. The PID comes from
// the file name.
func ReadDescriptor(path string) (Descriptor, error) {
	pid, ok := PIDFromFileName(filepath.Base(path))
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s does not match %s<pid>%s", ErrMalformed, filepath.Base(path), filePrefix, fileSuffix)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading descriptor %s: %w", path, err)
	}
	d, err := ParseDescriptor(data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	d.PID = pid
	d.Path = path
	return d, nil
}

// PIDFromFileName extracts N from a file named pid_<N>.ini.
func PIDFromFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	pid, err := ParsePID(digits)
	if err != nil {
		return 0, false
	}
	return pid, true
}

// DescriptorFileName returns the descriptor file name for a process.
func DescriptorFileName(pid int) string {
	return filePrefix + strconv.Itoa(pid) + fileSuffix
}

// ParsePID converts a decimal process identifier. Signs, whitespace and
// non-positive values are rejected.
func ParsePID(s string) (int, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return pid, nil
}

func requiredString(values map[string]string, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrMalformed, key)
	}
	return v, nil
}

func requiredInt(values map[string]string, key string) (int, error) {
	raw, err := requiredString(values, key)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrMalformed, key, raw)
	}
	return n, nil
}
