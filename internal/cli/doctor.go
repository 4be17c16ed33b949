package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/agentx-labs/emuscan/internal/config"
	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check discovery directories and configuration",
	Long: `Report which discovery directories exist, how many descriptors each holds, and
how many belong to running emulators. Stale descriptors are removed as part of
the scan.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		st := newStyler(out)

		checkConfigFile(out, st, s.cfg)

		fmt.Fprintln(out, "Discovery directories:")
		total := 0
		for _, dir := range s.registry.Directories() {
			total += checkDiscoveryDir(out, st, dir)
		}

		live := s.registry.Available()
		fmt.Fprintln(out, "Emulators:")
		fmt.Fprintf(out, "  %s %d descriptor(s) found, %d running\n", st.tag(tagInfo), total, live)
		if stale := total - live; stale > 0 {
			fmt.Fprintf(out, "  %s %d descriptor(s) were stale or unreadable\n", st.tag(tagWarn), stale)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func checkConfigFile(w io.Writer, st styler, cfg *config.Config) {
	fmt.Fprintln(w, "Config:")
	if cfg.Path == "" {
		fmt.Fprintf(w, "  %s no config file, using defaults\n", st.tag(tagInfo))
		return
	}
	result, err := config.ValidateFile(cfg.Path)
	if err != nil {
		fmt.Fprintf(w, "  %s %s: %v\n", st.tag(tagFail), cfg.Path, err)
		return
	}
	if !result.Valid {
		fmt.Fprintf(w, "  %s %s has %d issue(s), run 'config validate'\n", st.tag(tagWarn), cfg.Path, len(result.Issues))
		return
	}
	fmt.Fprintf(w, "  %s %s is valid\n", st.tag(tagOK), cfg.Path)
}

// checkDiscoveryDir prints the state of one directory and returns the number
// of descriptor files it holds before any cleanup.
func checkDiscoveryDir(w io.Writer, st styler, dir string) int {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "  %s %s %s\n", st.tag(tagMiss), dir, st.muted("(does not exist)"))
		return 0
	}
	if err != nil {
		fmt.Fprintf(w, "  %s %s: %v\n", st.tag(tagFail), dir, err)
		return 0
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  %s %s exists but is not a directory\n", st.tag(tagWarn), dir)
		return 0
	}

	n, err := countDescriptors(dir)
	if err != nil {
		fmt.Fprintf(w, "  %s %s: %v\n", st.tag(tagFail), dir, err)
		return 0
	}
	fmt.Fprintf(w, "  %s %s (%d descriptor(s))\n", st.tag(tagOK), dir, n)
	return n
}

func countDescriptors(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := discovery.PIDFromFileName(e.Name()); ok {
			n++
		}
	}
	return n, nil
}
