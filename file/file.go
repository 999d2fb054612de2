package file

import (
	"github.com/PabloCSScobar/musicxml-parser/model"
)

// CreateFileNumMap gives each score path a stable file number. Paths come in
// walk order, so numbers survive reindexing an unchanged tree.
func CreateFileNumMap(paths []string) model.FileNumToScorePath {
	res := make(model.FileNumToScorePath)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}
