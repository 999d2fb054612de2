package catalog

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/util"
)

const catalogFilename = "catalog.dat"

// NewEventsFilename returns a fresh name for one analyzed score's data file.
func NewEventsFilename() string {
	return uuid.New().String() + ".dat"
}

func WriteAnalyzed(outDir string, filename string, analyzed model.AnalyzedScore) {
	util.CreateBinary(filepath.Join(outDir, filename), analyzed)
}

func WriteCatalog(outDir string, cat model.Catalog) {
	util.CreateBinary(filepath.Join(outDir, catalogFilename), cat)
}

func LoadCatalog(outDir string) model.Catalog {
	return util.ReadBinaryOrPanic[model.Catalog](filepath.Join(outDir, catalogFilename))
}

func LoadAnalyzed(outDir string, filename string) model.AnalyzedScore {
	return util.ReadBinaryOrPanic[model.AnalyzedScore](filepath.Join(outDir, filename))
}
