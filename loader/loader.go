// Package loader opens score files from disk, transparently unpacking
// compressed .mxl archives.
package loader

import (
	"archive/zip"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/PabloCSScobar/musicxml-parser/musicxml"
	"github.com/pkg/errors"
)

const containerPath = "META-INF/container.xml"

type container struct {
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath string `xml:"full-path,attr"`
}

// Load reads a MusicXML score from path. Files ending in .mxl are treated
// as compressed archives, everything else as a plain partwise document.
func Load(path string) (*musicxml.ScorePartwise, error) {
	if strings.EqualFold(filepath.Ext(path), ".mxl") {
		return loadCompressed(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %v", path)
	}
	defer f.Close()
	doc, err := musicxml.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %v", path)
	}
	return doc, nil
}

func loadCompressed(path string) (*musicxml.ScorePartwise, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open archive %v", path)
	}
	defer archive.Close()

	inner, err := rootfilePath(archive)
	if err != nil {
		return nil, errors.Wrapf(err, "bad archive %v", path)
	}
	entry, err := archive.Open(inner)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %v inside %v", inner, path)
	}
	defer entry.Close()
	doc, err := musicxml.Decode(entry)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %v inside %v", inner, path)
	}
	return doc, nil
}

// rootfilePath finds the document to load via META-INF/container.xml.
// Archives without a manifest or without a rootfile entry are rejected.
func rootfilePath(archive *zip.ReadCloser) (string, error) {
	manifest, err := archive.Open(containerPath)
	if err != nil {
		return "", errors.Wrapf(err, "missing %v", containerPath)
	}
	defer manifest.Close()

	var c container
	if err := xml.NewDecoder(manifest).Decode(&c); err != nil {
		return "", errors.Wrapf(err, "could not parse %v", containerPath)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", errors.Errorf("%v does not name a rootfile", containerPath)
	}
	return c.Rootfiles[0].FullPath, nil
}
