package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/spf13/cobra"
)

var findJSON bool

var findCmd = &cobra.Command{
	Use:   "find <pid>",
	Short: "Show the emulator started by a process id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		h, ok := s.registry.FindByID(args[0])
		if !ok {
			return fmt.Errorf("no running emulator with pid %s", args[0])
		}
		return printHandle(cmd.OutOrStdout(), h, findJSON)
	},
}

func init() {
	findCmd.Flags().BoolVar(&findJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(findCmd)
}

// printHandle writes the details of one discovered emulator.
func printHandle(w io.Writer, h discovery.Handle, asJSON bool) error {
	e := newEntry(h)
	if asJSON {
		return printJSON(w, e)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", e.Name)
	fmt.Fprintf(tw, "PID:\t%d\n", e.PID)
	fmt.Fprintf(tw, "Serial port:\t%d\n", e.Serial)
	fmt.Fprintf(tw, "ADB port:\t%d\n", e.ADB)
	if e.Endpoint != "" {
		fmt.Fprintf(tw, "gRPC endpoint:\t%s\n", e.Endpoint)
	}
	fmt.Fprintf(tw, "AVD:\t%s (%s)\n", e.AVD, e.AVDID)
	fmt.Fprintf(tw, "AVD directory:\t%s\n", e.AVDDir)
	if e.Version != "" {
		fmt.Fprintf(tw, "Version:\t%s\n", e.Version)
	}
	fmt.Fprintf(tw, "Descriptor:\t%s\n", e.File)
	return tw.Flush()
}
