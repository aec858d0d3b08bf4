package cmd

import (
	"fmt"

	"github.com/halfstep/midi2cv/ingest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI input ports",
	Long:  `List available MIDI input ports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := ingest.Ports()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("no MIDI input ports available")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
