package cmd

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/PabloCSScobar/musicxml-parser/catalog"
	"github.com/PabloCSScobar/musicxml-parser/constants"
	"github.com/PabloCSScobar/musicxml-parser/util"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports on the indexed out dir",
	Long:  `Reports on the indexed out dir`,
	Run: func(cmd *cobra.Command, args []string) {
		report()
	},
}

type outDirReport struct {
	numFiles    int64
	numBytes    int64
	eventCounts []int
}

func analyzeOutDir() outDirReport {
	var report outDirReport
	outDir := constants.GetOutDir()

	files, err := os.ReadDir(outDir)
	if err != nil {
		panic("Could not read dir because: " + err.Error())
	}

	r, _ := regexp.Compile("^[0-9a-fA-F]{8}-([0-9a-fA-F]{4}-){3}[0-9a-fA-F]{12}.dat$")
	for _, file := range files {
		filename := file.Name()
		if !r.MatchString(filename) {
			continue
		}
		report.numFiles += 1
		info, err := file.Info()
		if err != nil {
			panic("Could not get file stats")
		}
		report.numBytes += info.Size()
		analyzed := catalog.LoadAnalyzed(outDir, filename)
		report.eventCounts = append(report.eventCounts, len(analyzed.Events))
	}

	return report
}

func report() {
	outDirReport := analyzeOutDir()
	cat := catalog.LoadCatalog(constants.GetOutDir())
	fmt.Printf("catalog entries: %v\n", len(cat))
	fmt.Printf("analyzed files: %v\n", outDirReport.numFiles)
	fmt.Printf("analyzed bytes: %v\n", outDirReport.numBytes)
	fmt.Printf("total events: %v\n", util.Sum(outDirReport.eventCounts))
	if outDirReport.numFiles > 0 {
		fmt.Printf("avg events per file: %v\n", util.Sum(outDirReport.eventCounts)/uint64(outDirReport.numFiles))
	}
}
