package pdfsplitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBaseFilename names output files for byte sources without a name
const DefaultBaseFilename = "pdfpic"

// Source is a PDF on disk or in memory. It is never modified.
type Source struct {
	path     string
	data     []byte
	baseName string
	inMemory bool
}

// FromFile returns a Source reading the PDF at path. Output files are named
// after the file name without its extension.
func FromFile(path string) Source {
	base := filepath.Base(path)
	return Source{
		path:     path,
		baseName: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// FromBytes returns a Source over an in-memory PDF. baseFilename names the output
// files since raw bytes carry no name; empty means DefaultBaseFilename.
func FromBytes(data []byte, baseFilename string) Source {
	if baseFilename == "" {
		baseFilename = DefaultBaseFilename
	}
	return Source{
		data:     data,
		baseName: baseFilename,
		inMemory: true,
	}
}

// BaseName is the prefix of the files WriteImages produces
func (s Source) BaseName() string {
	return s.baseName
}

// Path is empty for in-memory sources
func (s Source) Path() string {
	return s.path
}

// String describes the source for logs and job records
func (s Source) String() string {
	if s.inMemory {
		return fmt.Sprintf("bytes:%s (%d bytes)", s.baseName, len(s.data))
	}
	return s.path
}

// Validate checks the source without opening it
func (s Source) Validate() error {
	if s.inMemory {
		if s.data == nil {
			return &ValidationError{Op: "open source", Subject: s.baseName, Err: ErrNilSource}
		}
		return nil
	}
	info, err := os.Stat(s.path)
	if err != nil || info.IsDir() {
		return &ValidationError{Op: "open source", Subject: s.path, Err: ErrSourceNotFound}
	}
	if !strings.EqualFold(filepath.Ext(s.path), ".pdf") {
		return &ValidationError{Op: "open source", Subject: s.path, Err: ErrNotPDF}
	}
	return nil
}

// Bytes returns the PDF content, reading the file for path sources
func (s Source) Bytes() ([]byte, error) {
	if s.inMemory {
		return s.data, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read PDF file: %w", err)
	}
	return data, nil
}
