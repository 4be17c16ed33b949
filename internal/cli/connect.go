package cli

import (
	"fmt"

	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/spf13/cobra"
)

var connectCheck bool

var connectCmd = &cobra.Command{
	Use:   "connect <host:port>",
	Short: "Describe an emulator reached by address instead of discovery",
	Long: `Build a handle for an emulator control endpoint given as host:port. No discovery
directory is scanned. With --check the endpoint must accept a TCP connection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := discovery.Connection(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !connectCheck {
			fmt.Fprintln(out, h.Name())
			return nil
		}

		st := newStyler(out)
		if !h.IsAlive() {
			fmt.Fprintf(out, "%s %s is not accepting connections\n", st.tag(tagFail), h.Name())
			return fmt.Errorf("%s is unreachable", h.Name())
		}
		fmt.Fprintf(out, "%s %s is reachable\n", st.tag(tagOK), h.Name())
		return nil
	},
}

func init() {
	connectCmd.Flags().BoolVar(&connectCheck, "check", false, "Verify the endpoint accepts connections")
	rootCmd.AddCommand(connectCmd)
}
