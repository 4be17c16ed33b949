package cli

import (
	"github.com/agentx-labs/emuscan/internal/branding"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath    string
	discoveryDirs []string
	probeFlag     bool
	logLevelFlag  string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` finds Android emulators running on this machine by reading the
pid_<N>.ini descriptor files each emulator writes into its discovery directory.
Descriptors left behind by emulators that have exited are removed on every scan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	pf.StringArrayVar(&discoveryDirs, "discovery-dir", nil, "Discovery directory to scan (repeatable, replaces the platform defaults)")
	pf.BoolVar(&probeFlag, "probe", false, "Also require the emulator's gRPC port to accept connections")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error, off)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
