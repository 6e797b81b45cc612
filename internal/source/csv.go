// Package source reads the tabular input files.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/edseed/pkg/edseed"
)

const utf8BOM = "\ufeff"

// CSVFile is a comma-separated file with a header row.
type CSVFile struct {
	path string
}

// NewCSVFile returns a source for the file at path. The file is not
// opened until Read.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Name returns the file's base name.
func (f *CSVFile) Name() string {
	return filepath.Base(f.path)
}

// Path returns the file's path as given.
func (f *CSVFile) Path() string {
	return f.path
}

// Read loads the whole file. Rows shorter than the header simply lack the
// trailing columns; extra cells are ignored.
func (f *CSVFile) Read(ctx context.Context) (*edseed.Table, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", f.path, edseed.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	hash := sha256.New()
	table, err := readCSV(ctx, f.Name(), io.TeeReader(file, hash))
	if err != nil {
		return nil, err
	}
	table.Checksum = hex.EncodeToString(hash.Sum(nil))
	return table, nil
}

func readCSV(ctx context.Context, name string, r io.Reader) (*edseed.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s has no header: %w", name, edseed.ErrSourceEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: parse header: %v: %w", name, err, edseed.ErrSourceMalformed)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	}

	table := &edseed.Table{Name: name, Header: header}
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: parse line %d: %v: %w", name, line, err, edseed.ErrSourceMalformed)
		}

		row := make(edseed.Row, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%s has no data rows: %w", name, edseed.ErrSourceEmpty)
	}
	return table, nil
}

var _ edseed.TableSource = (*CSVFile)(nil)
