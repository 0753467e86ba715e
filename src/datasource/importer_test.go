package datasource

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCSVImport_HeaderUnits(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "meas.csv", "tim [s],V [mV],raw\n0,1.5,7\n1,2.5,8\n")

	ds, err := NewManager().Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := ds.Vars(); len(got) != 3 || got[0] != "tim" || got[1] != "V" || got[2] != "raw" {
		t.Fatalf("vars: %v", got)
	}
	if ds.Unit("V") != "mV" || ds.Unit("raw") != "" {
		t.Fatalf("units: %q %q", ds.Unit("V"), ds.Unit("raw"))
	}
	v, _ := ds.Values("V")
	if len(v) != 2 || v[1] != 2.5 {
		t.Fatalf("values: %v", v)
	}
	if ds.Len() != 2 {
		t.Fatalf("len: %d", ds.Len())
	}
}

func TestCSVImport_BadCellsBecomeNaN(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "meas.csv", "a,b\n1,x\n,3\n")

	ds, err := NewManager().Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	a, _ := ds.Values("a")
	b, _ := ds.Values("b")
	if !math.IsNaN(a[1]) || !math.IsNaN(b[0]) || b[1] != 3 {
		t.Fatalf("a=%v b=%v", a, b)
	}
}

func TestCSVImport_RaggedRowsPadded(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "meas.csv", "a,b\n1,2\n3\n")

	ds, err := NewManager().Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	b, _ := ds.Values("b")
	if len(b) != 2 || !math.IsNaN(b[1]) {
		t.Fatalf("short row must pad with NaN: %v", b)
	}
}

func TestTSVImport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "meas.tsv", "a\tb\n1\t2\n")

	ds, err := NewManager().Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	b, _ := ds.Values("b")
	if len(b) != 1 || b[0] != 2 {
		t.Fatalf("values: %v", b)
	}
}

func TestJSONImport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "meas.json", `{"V [mV]": [1, 2], "tim": [0, 1]}`)

	ds, err := NewManager().Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !ds.Has("V") || ds.Unit("V") != "mV" {
		t.Fatalf("header units not split: %v", ds.Vars())
	}
	v, _ := ds.Values("V")
	if len(v) != 2 || v[1] != 2 {
		t.Fatalf("values: %v", v)
	}
}

func TestImport_UnknownExtension(t *testing.T) {
	if _, err := NewManager().Import("meas.xyz"); err == nil {
		t.Fatalf("expected dispatch error")
	}
}

func TestImport_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "")
	if _, err := NewManager().Import(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestXValues_IndexAndColumn(t *testing.T) {
	ds := NewDataset()
	ds.AddColumn("V", []float64{5, 6, 7}, "")

	idx, err := ds.XValues(IndexKey)
	if err != nil || len(idx) != 3 || idx[2] != 2 {
		t.Fatalf("index coord: %v %v", idx, err)
	}
	col, err := ds.XValues("V")
	if err != nil || col[0] != 5 {
		t.Fatalf("column coord: %v %v", col, err)
	}
	if _, err := ds.XValues("missing"); err == nil {
		t.Fatalf("expected error for unknown x column")
	}
}

func TestRegistry_OrderAndVariables(t *testing.T) {
	r := NewRegistry()
	a := NewDataset()
	a.AddColumn("V", []float64{1}, "")
	b := NewDataset()
	b.AddColumn("I", []float64{2}, "")
	r.Add("b.csv", b, "/x/b.csv")
	r.Add("a.csv", a, "/x/a.csv")

	if got := r.Names(); got[0] != "b.csv" || got[1] != "a.csv" {
		t.Fatalf("insertion order lost: %v", got)
	}
	if got := r.AvailableVariables(); len(got) != 2 || got[0] != "I" || got[1] != "V" {
		t.Fatalf("variables: %v", got)
	}
	r.Remove("b.csv")
	if r.Len() != 1 {
		t.Fatalf("len after remove: %d", r.Len())
	}
	if _, ok := r.Get("b.csv"); ok {
		t.Fatalf("removed entry still present")
	}
}
