package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/PabloCSScobar/musicxml-parser/catalog"
	"github.com/PabloCSScobar/musicxml-parser/constants"
	"github.com/PabloCSScobar/musicxml-parser/db"
	"github.com/PabloCSScobar/musicxml-parser/file"
	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/util"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Creates the score catalog",
	Long:  `Creates the score catalog`,
	Run: func(cmd *cobra.Command, args []string) {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				panic(err)
			}
			maxNum = arg1
		}

		Index(maxNum)
	},
}

const metadataBatchSize = 10

func fetchMetadatas(paths []string) map[string]model.ScoreMetadata {
	res := make(map[string]model.ScoreMetadata)
	if constants.GetMetadataEndpoint() == "" {
		return res
	}

	var batch []string
	flush := func() {
		for k, v := range db.GetScoreMetadatas(batch) {
			res[k] = v
		}
		batch = nil
	}
	for _, path := range paths {
		batch = append(batch, filepath.Base(path))
		if len(batch) == metadataBatchSize {
			flush()
		}
	}
	if len(batch) > 0 {
		flush()
	}
	return res
}

func analyzeScoreFile(fileNum uint32, path string, metadatas map[string]model.ScoreMetadata) (model.CatalogEntry, model.AnalyzedScore, error) {
	a, err := AnalyzeFile(path, true)
	if err != nil {
		return model.CatalogEntry{}, model.AnalyzedScore{}, err
	}

	entry := model.CatalogEntry{
		FileNum:          fileNum,
		Path:             path,
		Title:            a.Score.Title,
		Composer:         a.Score.Composer,
		Parts:            len(a.Score.Parts),
		Measures:         countMeasures(a.Score),
		ExpandedMeasures: countMeasures(a.Expanded),
		Events:           len(a.Events),
		DurationMs:       a.DurationMs(),
		EventsFile:       catalog.NewEventsFilename(),
	}
	if meta, ok := metadatas[filepath.Base(path)]; ok {
		entry.HasMetadata = true
		if meta.Title != "" {
			entry.Title = meta.Title
		}
		if meta.Composer != "" {
			entry.Composer = meta.Composer
		}
	}

	analyzed := model.AnalyzedScore{
		Events:   a.Events,
		Playback: a.Playback,
		Errors:   a.Expanded.Errors,
		Warnings: a.Expanded.Warnings,
	}
	return entry, analyzed, nil
}

// Index analyzes every score under the scores dir and writes the catalog
// plus one events file per score into a fresh out dir. maxNum of 0 indexes
// everything.
func Index(maxNum int) {
	util.RecreateOutputDir()
	outDir := constants.GetOutDir()
	paths := util.GatherAllScorePaths(constants.GetScoresDir(), maxNum)
	fileNumMap := file.CreateFileNumMap(paths)
	metadatas := fetchMetadatas(paths)

	nums := util.GetKeys(fileNumMap)
	slices.Sort(nums)

	cat := make(model.Catalog)
	var mu sync.Mutex
	swg := sizedwaitgroup.New(runtime.NumCPU())
	for i, num := range nums {
		fmt.Printf("Processing %v of %v score files\n", i+1, len(nums))
		swg.Add()
		go func(num uint32, path string) {
			defer swg.Done()
			entry, analyzed, err := analyzeScoreFile(num, path, metadatas)
			if err != nil {
				fmt.Printf("Skipping %v because: %v\n", path, err)
				return
			}
			catalog.WriteAnalyzed(outDir, entry.EventsFile, analyzed)
			mu.Lock()
			cat[num] = entry
			mu.Unlock()
		}(num, fileNumMap[num])
	}
	swg.Wait()

	catalog.WriteCatalog(outDir, cat)
	util.CreateBinary(filepath.Join(outDir, "fileNumToScorePath.dat"), fileNumMap)
}
