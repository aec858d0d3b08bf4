package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "midi2cv",
	Short: "MIDI to CV/gate adapter for monophonic analog synths",
	Long: `midi2cv translates a MIDI note stream into the control voltage and
gate signals of a monophonic analog synthesizer, with configurable note
priority, chord cleanup and portamento.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
