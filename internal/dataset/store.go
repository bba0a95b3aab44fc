package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// #region constants

// Delimiter separates the text and complexity columns.
const Delimiter = ';'

// #endregion constants

// #region store-struct

// Store is an append-only, UTF-16 encoded, ';'-delimited CSV file of labeled
// actions. One process owns the file for the duration of a run; there is no
// locking.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore prepares a store at path, creating the parent directory if needed.
// The file itself is created lazily on the first Append.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("dataset path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dataset dir: %w", err)
		}
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// #endregion store-struct

// #region load

// Load returns the dedup keys of every record already in the file. A missing
// file yields an empty set; an unreadable one yields an empty set and a warning.
func (s *Store) Load() *DedupSet {
	set := NewDedupSet()
	rows, err := s.readRows()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no existing dataset, starting empty", zap.String("path", s.path))
		} else {
			s.logger.Warn("could not read existing dataset, dedup starts empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return set
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		set.Add(row[0])
	}
	return set
}

// Records parses every data row of the file.
func (s *Store) Records() ([]Record, error) {
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", i+2, len(row))
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse complexity: %w", i+2, err)
		}
		records = append(records, Record{Text: row[0], Complexity: c})
	}
	return records, nil
}

// readRows decodes the file and returns all rows after the header.
func (s *Store) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// UseBOM honours a big-endian BOM if another tool wrote the file.
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	r := csv.NewReader(transform.NewReader(f, dec))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// #endregion load

// #region append

// Append writes one record, preceded by the header row when the file is new
// or empty.
func (s *Store) Append(rec Record) error {
	fresh, order, err := s.inspectFile()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}

	// Only the first bytes of the file carry a BOM.
	var enc *encoding.Encoder
	if fresh {
		enc = unicode.UTF16(order, unicode.UseBOM).NewEncoder()
	} else {
		enc = unicode.UTF16(order, unicode.IgnoreBOM).NewEncoder()
	}
	tw := transform.NewWriter(f, enc)
	w := csv.NewWriter(tw)
	w.Comma = Delimiter
	w.UseCRLF = true

	if fresh {
		if err := w.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write([]string{rec.Text, FormatComplexity(rec.Complexity)}); err != nil {
		f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush record: %w", err)
	}
	if err := tw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush encoder: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close dataset: %w", err)
	}
	return nil
}

// inspectFile reports whether the file is new/empty and which byte order an
// existing file uses.
func (s *Store) inspectFile() (bool, unicode.Endianness, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, unicode.LittleEndian, nil
	}
	if err != nil {
		return false, unicode.LittleEndian, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	bom := make([]byte, 2)
	n, err := io.ReadFull(f, bom)
	if n == 0 {
		return true, unicode.LittleEndian, nil
	}
	if err == nil && bom[0] == 0xFE && bom[1] == 0xFF {
		return false, unicode.BigEndian, nil
	}
	return false, unicode.LittleEndian, nil
}

// #endregion append

// #region helpers

// FormatComplexity rounds to two decimals and always keeps a fractional part
// ("5.0", "7.25"), matching what the training script expects.
func FormatComplexity(c float64) string {
	r := math.Round(c*100) / 100
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if math.IsInf(r, 0) || math.IsNaN(r) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// #endregion helpers
