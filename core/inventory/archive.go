package inventory

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// DescriptorName is the well-known file inside a mod archive that declares its version.
const DescriptorName = "modDesc.xml"

// maxDescriptorSize caps how much of the descriptor is read.
const maxDescriptorSize = 4 << 20

// ErrNoDescriptor is returned when the archive has no descriptor entry.
var ErrNoDescriptor = errors.New("mod descriptor not found")

type modDescriptor struct {
	XMLName xml.Name
	Version string `xml:"version"`
}

// ReadDeclaredVersion opens the archive at archivePath and returns the trimmed
// text of the descriptor root's <version> child. A root-level descriptor wins
// over one nested in a directory; the name match is case-insensitive.
func ReadDeclaredVersion(archivePath string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	entry := findDescriptor(r.File)
	if entry == nil {
		return "", ErrNoDescriptor
	}

	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	var desc modDescriptor
	if err := xml.NewDecoder(io.LimitReader(rc, maxDescriptorSize)).Decode(&desc); err != nil {
		return "", fmt.Errorf("parse %s: %w", entry.Name, err)
	}

	return strings.TrimSpace(desc.Version), nil
}

func findDescriptor(files []*zip.File) *zip.File {
	var nested *zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if !strings.EqualFold(path.Base(name), DescriptorName) {
			continue
		}
		if !strings.Contains(name, "/") {
			return f
		}
		if nested == nil {
			nested = f
		}
	}
	return nested
}
