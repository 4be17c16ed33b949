package cli

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/spf13/cobra"
)

var (
	defaultJSON    bool
	defaultVerbose bool
)

var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the emulator tools should use when none is named",
	Long: `Print the name of the default emulator. A running emulator matching
$ANDROID_SERIAL, or the default_serial setting when that is unset, is
preferred; otherwise the emulator with the lowest process id is chosen and a
warning names the preferred serial that was not found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		h, ok := discovery.DefaultEmulator(s.registry, s.selector)
		if !ok {
			return errors.New("no running emulators found")
		}
		if pref := s.selector.Preferred; pref != "" && !s.selector.Matches(h) {
			s.log.Warn().Str("preferred", pref).Str("selected", h.Name()).Msg("preferred emulator is not running, using lowest pid")
		}
		if defaultJSON || defaultVerbose {
			return printHandle(cmd.OutOrStdout(), h, defaultJSON)
		}
		fmt.Fprintln(cmd.OutOrStdout(), h.Name())
		return nil
	},
}

func init() {
	defaultCmd.Flags().BoolVar(&defaultJSON, "json", false, "Output in JSON format")
	defaultCmd.Flags().BoolVarP(&defaultVerbose, "verbose", "v", false, "Show full details")
	rootCmd.AddCommand(defaultCmd)
}
