package session

import (
	"fmt"
	"path/filepath"

	"github.com/splotview/splotview/src/datasource"
	"github.com/splotview/splotview/src/logging"
)

// Renderer is the drawing collaborator. The session issues exactly one Draw
// per page per completed action; everything upstream (transform, autoscale,
// legend composition) has settled by the time it is called.
type Renderer interface {
	Draw(p *Page) error
}

// Session is the ordered list of pages plus the dataset registry and the
// undo history operating on them. The registry is an explicit dependency:
// it is passed in at construction and threaded through operations, never
// reached through a package-level singleton.
type Session struct {
	Pages   []*Page
	Files   *datasource.Registry
	Current int
	History *UndoManager

	imports  *datasource.Manager
	renderer Renderer
}

// NewSession builds a session around an externally owned registry (a fresh
// one when nil), starting with a single 1×1 page.
func NewSession(files *datasource.Registry) *Session {
	if files == nil {
		files = datasource.NewRegistry()
	}
	s := &Session{
		Files:   files,
		imports: datasource.NewManager(),
	}
	s.History = newUndoManager(s)
	s.addPage(1, 1, false)
	return s
}

// SetRenderer attaches the drawing collaborator. A nil renderer disables
// redraws (useful for headless operation and tests).
func (s *Session) SetRenderer(r Renderer) { s.renderer = r }

// Importers exposes the format manager, e.g. to register extra importers.
func (s *Session) Importers() *datasource.Manager { return s.imports }

func (s *Session) redraw(p *Page) {
	if s.renderer == nil || p == nil {
		return
	}
	if err := s.renderer.Draw(p); err != nil {
		logging.Errorf("render: draw failed: %v", err)
	}
}

func (s *Session) wirePage(p *Page) {
	p.SetRangeListener(s.BroadcastXRange)
}

// ---- Pages ----

func (s *Session) addPage(rows, cols int, push bool) *Page {
	if push {
		s.History.Push("Add New Page")
	}
	p := NewPage(rows, cols)
	p.Title = fmt.Sprintf("Page %d", len(s.Pages)+1)
	s.wirePage(p)
	s.Pages = append(s.Pages, p)
	return p
}

// AddPage appends a new rows×cols page.
func (s *Session) AddPage(rows, cols int) *Page {
	return s.addPage(rows, cols, true)
}

// AdoptPage appends an externally built page (e.g. a restored one) without
// touching history, wiring its range listener to this session.
func (s *Session) AdoptPage(p *Page) {
	s.wirePage(p)
	s.Pages = append(s.Pages, p)
}

// RemovePage closes a page tab, destroying its traces.
func (s *Session) RemovePage(index int) error {
	if index < 0 || index >= len(s.Pages) {
		return fmt.Errorf("session: no such page %d", index)
	}
	s.History.Push("Close Page")
	s.Pages = append(s.Pages[:index], s.Pages[index+1:]...)
	if s.Current >= len(s.Pages) {
		s.Current = len(s.Pages) - 1
	}
	if s.Current < 0 {
		s.Current = 0
	}
	return nil
}

// RenamePage sets a page title.
func (s *Session) RenamePage(index int, name string) error {
	if index < 0 || index >= len(s.Pages) {
		return fmt.Errorf("session: no such page %d", index)
	}
	if name == "" {
		return fmt.Errorf("session: empty page name")
	}
	s.History.Push(fmt.Sprintf("Rename Page to %s", name))
	s.Pages[index].Title = name
	return nil
}

// Page returns the page at index, or nil.
func (s *Session) Page(index int) *Page {
	if index < 0 || index >= len(s.Pages) {
		return nil
	}
	return s.Pages[index]
}

// CurrentPage returns the selected page, or nil for an empty session.
func (s *Session) CurrentPage() *Page { return s.Page(s.Current) }

// SetCurrent selects a page.
func (s *Session) SetCurrent(index int) {
	if index >= 0 && index < len(s.Pages) {
		s.Current = index
	}
}

// ---- Files ----

// ImportFile parses a data file and registers it under its base name. The
// session is mutated only after the parse succeeded.
func (s *Session) ImportFile(path string) (string, error) {
	ds, err := s.imports.Import(path)
	if err != nil {
		return "", err
	}
	name := filepath.Base(path)
	s.History.Push("Import Data")
	s.Files.Add(name, ds, path)
	return name, nil
}

// RemoveFile drops a file from the registry. Traces referencing it keep
// their raw samples until explicitly deleted or reloaded.
func (s *Session) RemoveFile(name string) {
	s.History.Push("Remove File")
	s.Files.Remove(name)
}

// ExchangeFile replaces oldName with the file at newPath and reloads every
// trace referencing it across all pages. A failed import leaves the session
// unchanged. Returns the number of traces refreshed.
func (s *Session) ExchangeFile(oldName, newPath string) (int, error) {
	ds, err := s.imports.Import(newPath)
	if err != nil {
		return 0, err
	}
	s.History.Push("Replace File")
	newName := filepath.Base(newPath)
	s.Files.Remove(oldName)
	s.Files.Add(newName, ds, newPath)
	cnt := 0
	for _, p := range s.Pages {
		n := p.ReloadData(oldName, newName, ds)
		if n > 0 {
			s.redraw(p)
		}
		cnt += n
	}
	return cnt, nil
}

// ApplyFormulas computes derived columns on a registered file. The dataset is
// replaced rather than extended in place so undo snapshots keep the original
// columns. Returns the number of formulas that produced a column.
func (s *Session) ApplyFormulas(fileName string, formulas []datasource.Formula) (int, error) {
	e, ok := s.Files.Get(fileName)
	if !ok {
		return 0, fmt.Errorf("session: unknown file %q", fileName)
	}
	nd, cnt := datasource.ApplyFormulas(e.Dataset, formulas)
	if cnt == 0 {
		return 0, nil
	}
	s.History.Push("Apply Formulas")
	s.Files.Add(fileName, nd, e.OriginalPath)
	return cnt, nil
}

// ---- Plotting ----

// Plot adds one trace per named variable from a registered file onto an axis
// of the current page, then autoscales that axis across all its traces.
func (s *Session) Plot(fileName string, vars []string, xKey string, axIdx int) error {
	pg := s.CurrentPage()
	if pg == nil {
		return fmt.Errorf("session: no current page")
	}
	ds, ok := s.Files.Dataset(fileName)
	if !ok {
		return fmt.Errorf("session: unknown file %q", fileName)
	}
	xd, err := ds.XValues(xKey)
	if err != nil {
		return err
	}
	xLabel := "Index (Time)"
	if xKey != "" && xKey != datasource.IndexKey {
		xLabel = fmt.Sprintf("%s [%s]", xKey, ds.Unit(xKey))
	}

	s.History.Push("Plot Data")
	for _, v := range vars {
		yd, ok := ds.Values(v)
		if !ok {
			logging.Warnf("plot: %s has no variable %q, skipped", fileName, v)
			continue
		}
		if _, err := pg.AddTrace(xd, yd, v, ds.Unit(v), fileName, v, xKey, xLabel, axIdx, nil); err != nil {
			return err
		}
	}
	pg.AutoscaleAxis(axIdx, "both")
	s.redraw(pg)
	return nil
}

// UpdateTrace applies a settings record to one trace on a page and redraws.
func (s *Session) UpdateTrace(pageIdx int, traceID string, u TraceUpdate) error {
	pg := s.Page(pageIdx)
	if pg == nil {
		return fmt.Errorf("session: no such page %d", pageIdx)
	}
	s.History.Push("Edit Trace")
	if err := pg.UpdateTrace(traceID, u, s.Files); err != nil {
		return err
	}
	s.redraw(pg)
	return nil
}

// DeleteTraces removes traces from a page.
func (s *Session) DeleteTraces(pageIdx int, traceIDs ...string) error {
	pg := s.Page(pageIdx)
	if pg == nil {
		return fmt.Errorf("session: no such page %d", pageIdx)
	}
	s.History.Push("Delete Traces")
	for _, id := range traceIDs {
		pg.RemoveTrace(id)
	}
	s.redraw(pg)
	return nil
}

// ---- Sync ----

// SyncCandidate is one (file, variable) pair matching an existing trace's
// keys that is not yet plotted on the target axis.
type SyncCandidate struct {
	File      string
	VarKey    string
	XKey      string
	Label     string
	Unit      string
	PageIndex int
	AxisIndex int
}

// SyncCandidates enumerates additions that would mirror existing traces from
// every registered file. pageIdx < 0 scans all pages.
func (s *Session) SyncCandidates(pageIdx int) []SyncCandidate {
	var pages []int
	if pageIdx < 0 {
		for i := range s.Pages {
			pages = append(pages, i)
		}
	} else if s.Page(pageIdx) != nil {
		pages = append(pages, pageIdx)
	}

	var out []SyncCandidate
	seen := map[string]bool{}
	for _, pi := range pages {
		pg := s.Pages[pi]
		var all []*Trace
		for ax := 0; ax < pg.NumAxes(); ax++ {
			all = append(all, pg.TracesOnAxis(ax)...)
		}
		for _, fname := range s.Files.Names() {
			ds, _ := s.Files.Dataset(fname)
			for _, t := range all {
				if !ds.Has(t.VarKey) {
					continue
				}
				key := fmt.Sprintf("%d|%d|%s|%s", pi, t.AxisIndex, fname, t.VarKey)
				if seen[key] {
					continue
				}
				exists := false
				for _, o := range pg.Traces {
					if o.File == fname && o.VarKey == t.VarKey && o.AxisIndex == t.AxisIndex {
						exists = true
						break
					}
				}
				if exists {
					continue
				}
				seen[key] = true
				out = append(out, SyncCandidate{
					File: fname, VarKey: t.VarKey, XKey: t.XKey,
					Label: t.Label, Unit: t.Unit,
					PageIndex: pi, AxisIndex: t.AxisIndex,
				})
			}
		}
	}
	return out
}

// ApplySync plots the selected candidates.
func (s *Session) ApplySync(cands []SyncCandidate) error {
	if len(cands) == 0 {
		return nil
	}
	s.History.Push("Sync/Add Data")
	touched := map[*Page]bool{}
	for _, c := range cands {
		pg := s.Page(c.PageIndex)
		if pg == nil {
			continue
		}
		ds, ok := s.Files.Dataset(c.File)
		if !ok {
			continue
		}
		yd, ok := ds.Values(c.VarKey)
		if !ok {
			continue
		}
		xd, err := ds.XValues(c.XKey)
		if err != nil {
			xd, _ = ds.XValues(datasource.IndexKey)
		}
		xLabel := "Index (Time)"
		if c.XKey != "" && c.XKey != datasource.IndexKey {
			xLabel = fmt.Sprintf("%s [%s]", c.XKey, ds.Unit(c.XKey))
		}
		if _, err := pg.AddTrace(xd, yd, c.Label, c.Unit, c.File, c.VarKey, c.XKey, xLabel, c.AxisIndex, nil); err != nil {
			return err
		}
		touched[pg] = true
	}
	for pg := range touched {
		s.redraw(pg)
	}
	return nil
}

// ---- X-link broadcast ----

// BroadcastXRange relays a link-group range change to every page. Each page
// applies it to its member axes under its own reentrancy guard, so the
// fan-out settles in a single pass per externally triggered change.
func (s *Session) BroadcastXRange(linkID string, xmin, xmax float64) {
	for _, p := range s.Pages {
		if len(p.Links.Members(linkID)) == 0 {
			continue
		}
		if p.ApplyLinkedXRange(linkID, xmin, xmax) {
			s.redraw(p)
		}
	}
}
