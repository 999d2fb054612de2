package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/util"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects an analyzed score file",
	Long:  `Inspects an analyzed score file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	analyzed := util.ReadBinaryOrPanic[model.AnalyzedScore](path)
	fmt.Printf("events: %v\n", len(analyzed.Events))
	fmt.Printf("playback events: %v\n", len(analyzed.Playback))
	fmt.Printf("errors: %v\n", len(analyzed.Errors))
	fmt.Printf("warnings: %v\n", len(analyzed.Warnings))
	for i := 0; i < util.Min(10, len(analyzed.Events)); i++ {
		fmt.Printf("event %v: %+v\n", i, analyzed.Events[i])
	}
}
