package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyzes a score whenever it changes",
	Long:  `Re-analyzes a score whenever it changes`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		watch(args[0])
	},
}

const watchPollInterval = 500 * time.Millisecond

func analyzeOnce(path string) {
	a, err := AnalyzeFile(path, true)
	if err != nil {
		fmt.Printf("Skipping %v because: %v\n", path, err)
		return
	}
	printAnalysis(a, false)
}

// watch polls the file's mtime and re-analyzes once saves settle. Notation
// software saves in bursts, hence the debounce.
func watch(path string) {
	debounced := debounce.New(300 * time.Millisecond)
	var lastMod time.Time
	for {
		if stat, err := os.Stat(path); err == nil && stat.ModTime() != lastMod {
			lastMod = stat.ModTime()
			debounced(func() { analyzeOnce(path) })
		}
		time.Sleep(watchPollInterval)
	}
}
