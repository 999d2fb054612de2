package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloCSScobar/musicxml-parser/export"
)

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "out.mid", "output file")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports a score as a MIDI file",
	Long:  `Exports a score as a MIDI file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		a, err := AnalyzeFile(args[0], true)
		if err != nil {
			panic("Could not analyze " + args[0] + " because: " + err.Error())
		}
		if err := export.WriteFile(export.ToSMF(a.Playback), exportOut); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %v\n", exportOut)
	},
}
