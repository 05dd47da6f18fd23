package spreadsheet

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"sheetpress/domain/table"
	"sheetpress/internal/errors"
)

// Source is one spreadsheet to consolidate, regardless of where its bytes
// live. The pipeline only ever sees this interface.
type Source interface {
	// Name returns the file name (a path for on-disk sources).
	Name() string
	// Open parses the spreadsheet into a raw frame.
	Open() (*table.RawFrame, error)
}

// FileSource reads a spreadsheet from disk. Used by the batch mode.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Open() (*table.RawFrame, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.FileUnreadable(filepath.Base(s.Path), err)
	}
	return ReadBytes(s.Path, data)
}

// BytesSource holds an uploaded spreadsheet in memory. Used by the web mode.
type BytesSource struct {
	FileName string
	Data     []byte
}

func (s BytesSource) Name() string { return s.FileName }

func (s BytesSource) Open() (*table.RawFrame, error) {
	return ReadBytes(s.FileName, s.Data)
}

// Discover walks dir recursively and returns a FileSource for every
// supported spreadsheet, in deterministic path order.
func Discover(dir string) ([]Source, error) {
	var sources []Source
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && SupportedFile(path) {
			sources = append(sources, FileSource{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan folder %s", dir)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name() < sources[j].Name() })
	return sources, nil
}
