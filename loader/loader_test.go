package loader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tinyScore = `<?xml version="1.0"?>
<score-partwise>
  <work><work-title>Etude</work-title></work>
  <part-list><score-part id="P1"><part-name>Piano</part-name></score-part></part-list>
  <part id="P1"><measure number="1"/></part>
</score-partwise>`

func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	assert.Nil(t, err)
	w := zip.NewWriter(f)
	for name, body := range entries {
		entry, err := w.Create(name)
		assert.Nil(t, err)
		_, err = entry.Write([]byte(body))
		assert.Nil(t, err)
	}
	assert.Nil(t, w.Close())
	assert.Nil(t, f.Close())
}

func TestLoadPlainXML(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "etude.musicxml")
	assert.Nil(os.WriteFile(path, []byte(tinyScore), 0644))

	doc, err := Load(path)
	assert.Nil(err)
	assert.Equal("Etude", doc.Work.Title)
	assert.Equal("P1", doc.PartList.ScoreParts[0].ID)
}

func TestLoadCompressedArchive(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "etude.mxl")
	writeArchive(t, path, map[string]string{
		"META-INF/container.xml": `<container><rootfiles><rootfile full-path="score.xml"/></rootfiles></container>`,
		"score.xml":              tinyScore,
	})

	doc, err := Load(path)
	assert.Nil(err)
	assert.Equal("Etude", doc.Work.Title)
}

func TestLoadArchiveWithoutContainer(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "broken.mxl")
	writeArchive(t, path, map[string]string{"score.xml": tinyScore})

	_, err := Load(path)
	assert.NotNil(err)
	assert.Contains(err.Error(), "META-INF/container.xml")
}

func TestLoadArchiveWithoutRootfile(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "broken.mxl")
	writeArchive(t, path, map[string]string{
		"META-INF/container.xml": `<container><rootfiles/></container>`,
		"score.xml":              tinyScore,
	})

	_, err := Load(path)
	assert.NotNil(err)
	assert.Contains(err.Error(), "rootfile")
}

func TestLoadMissingFile(t *testing.T) {
	assert := assert.New(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	assert.NotNil(err)
}
