package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	listJSON       bool
	listYAML       bool
	listMinVersion string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List running emulators",
	Long: `Scan the discovery directories and list every emulator whose process is alive.
Descriptors of emulators that have exited are deleted during the scan.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Output in YAML format")
	listCmd.Flags().StringVar(&listMinVersion, "min-version", "", "Only show emulators whose advertised version satisfies this constraint (e.g. \">= 35\")")
	listCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.AddCommand(listCmd)
}

// emulatorEntry is the display form of a handle.
type emulatorEntry struct {
	Name     string `json:"name" yaml:"name"`
	PID      int    `json:"pid" yaml:"pid"`
	Serial   int    `json:"serial_port" yaml:"serial_port"`
	ADB      int    `json:"adb_port" yaml:"adb_port"`
	GRPC     int    `json:"grpc_port,omitempty" yaml:"grpc_port,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AVD      string `json:"avd" yaml:"avd"`
	AVDID    string `json:"avd_id" yaml:"avd_id"`
	AVDDir   string `json:"avd_dir" yaml:"avd_dir"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	File     string `json:"descriptor" yaml:"descriptor"`
}

func newEntry(h discovery.Handle) emulatorEntry {
	d := h.Descriptor()
	return emulatorEntry{
		Name:     h.Name(),
		PID:      h.PID(),
		Serial:   d.SerialPort,
		ADB:      d.ADBPort,
		GRPC:     d.GRPCPort,
		Endpoint: h.Endpoint(),
		AVD:      d.AVDName,
		AVDID:    d.AVDID,
		AVDDir:   d.AVDDir,
		Version:  d.Version,
		File:     d.Path,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	handles := s.registry.Emulators()
	if listMinVersion != "" {
		handles, err = filterByVersion(handles, listMinVersion)
		if err != nil {
			return err
		}
	}

	entries := make([]emulatorEntry, 0, len(handles))
	for _, h := range handles {
		entries = append(entries, newEntry(h))
	}

	out := cmd.OutOrStdout()
	switch {
	case listJSON:
		return printJSON(out, entries)
	case listYAML:
		return printYAML(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No running emulators found.")
		return nil
	}
	return printEmulatorTable(out, entries)
}

// filterByVersion keeps handles whose advertised emulator.version satisfies
// constraint. Emulators that advertise no parseable version are dropped.
func filterByVersion(handles []discovery.Handle, constraint string) ([]discovery.Handle, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("parsing --min-version %q: %w", constraint, err)
	}
	var kept []discovery.Handle
	for _, h := range handles {
		v := h.Descriptor().SemVer()
		if v != nil && c.Check(v) {
			kept = append(kept, h)
		}
	}
	return kept, nil
}

func printEmulatorTable(w io.Writer, entries []emulatorEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPID\tADB\tGRPC\tAVD\tVERSION")
	for _, e := range entries {
		grpc := "-"
		if e.GRPC > 0 {
			grpc = fmt.Sprint(e.GRPC)
		}
		version := e.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", e.Name, e.PID, e.ADB, grpc, e.AVD, version)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
