package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mxp",
	Short: "MusicXML parsing and sequencing toolkit",
	Long:  `Parses MusicXML scores, expands their repeat structure and turns them into timed note events.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
