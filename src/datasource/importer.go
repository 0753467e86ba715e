package datasource

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Importer parses one on-disk format into a Dataset. Implementations are
// registered per extension; selection is by file extension only.
type Importer interface {
	// Extensions lists the dot-prefixed extensions this importer handles.
	Extensions() []string
	// Description is a short human-readable format name.
	Description() string
	// Import reads the file at path into a Dataset.
	Import(path string) (*Dataset, error)
}

// Manager dispatches imports to the registered importer for a file's
// extension.
type Manager struct {
	importers map[string]Importer
	order     []string
}

// NewManager returns a manager with the built-in importers registered.
func NewManager() *Manager {
	m := &Manager{importers: map[string]Importer{}}
	m.Register(CSVImporter{})
	m.Register(TSVImporter{})
	m.Register(JSONImporter{})
	m.Register(ExcelImporter{})
	return m
}

// Register adds an importer, replacing any previous one for the same
// extensions.
func (m *Manager) Register(imp Importer) {
	for _, ext := range imp.Extensions() {
		ext = strings.ToLower(ext)
		if _, ok := m.importers[ext]; !ok {
			m.order = append(m.order, ext)
		}
		m.importers[ext] = imp
	}
}

// For returns the importer registered for path's extension.
func (m *Manager) For(path string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	imp, ok := m.importers[ext]
	if !ok {
		return nil, fmt.Errorf("datasource: no importer for %q", ext)
	}
	return imp, nil
}

// Import auto-detects the format by extension and parses the file.
func (m *Manager) Import(path string) (*Dataset, error) {
	imp, err := m.For(path)
	if err != nil {
		return nil, err
	}
	return imp.Import(path)
}

// SupportedExtensions returns registered extensions in registration order.
func (m *Manager) SupportedExtensions() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// splitHeader separates "Name [unit]" into its parts. Headers without a
// bracketed suffix have an empty unit.
func splitHeader(h string) (name, unit string) {
	h = strings.TrimSpace(h)
	if i := strings.LastIndex(h, "["); i > 0 && strings.HasSuffix(h, "]") {
		return strings.TrimSpace(h[:i]), strings.TrimSpace(h[i+1 : len(h)-1])
	}
	return h, ""
}

// parseCell converts a text cell to float64, mapping unparseable or empty
// cells to NaN so row counts stay aligned.
func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func datasetFromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("datasource: empty file")
	}
	header := records[0]
	ds := NewDataset()
	for col, h := range header {
		name, unit := splitHeader(h)
		if name == "" {
			name = fmt.Sprintf("col%d", col)
		}
		values := make([]float64, 0, len(records)-1)
		for _, rec := range records[1:] {
			if col < len(rec) {
				values = append(values, parseCell(rec[col]))
			} else {
				values = append(values, math.NaN())
			}
		}
		ds.AddColumn(name, values, unit)
	}
	return ds, nil
}

func readDelimited(path string, comma rune) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("datasource: parse %s: %w", filepath.Base(path), err)
	}
	return datasetFromRecords(records)
}

// CSVImporter reads comma-separated files with a header row.
type CSVImporter struct{}

func (CSVImporter) Extensions() []string { return []string{".csv", ".dat"} }
func (CSVImporter) Description() string  { return "CSV Files" }
func (CSVImporter) Import(path string) (*Dataset, error) {
	return readDelimited(path, ',')
}

// TSVImporter reads tab-separated files with a header row.
type TSVImporter struct{}

func (TSVImporter) Extensions() []string { return []string{".tsv", ".txt"} }
func (TSVImporter) Description() string  { return "TSV Files" }
func (TSVImporter) Import(path string) (*Dataset, error) {
	return readDelimited(path, '\t')
}

// JSONImporter reads a top-level object of column name to numeric array.
type JSONImporter struct{}

func (JSONImporter) Extensions() []string { return []string{".json"} }
func (JSONImporter) Description() string  { return "JSON Files" }

func (JSONImporter) Import(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var cols map[string][]float64
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("datasource: parse %s: %w", filepath.Base(path), err)
	}
	ds := NewDataset()
	// Deterministic column order for map input.
	names := make([]string, 0, len(cols))
	for n := range cols {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		name, unit := splitHeader(n)
		ds.AddColumn(name, cols[n], unit)
	}
	return ds, nil
}
