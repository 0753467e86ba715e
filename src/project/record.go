// Package project persists whole sessions as .splot files and maintains the
// recent-file log. The on-disk form is a plain record graph encoded with gob
// and wrapped in gzip; loading falls back to the uncompressed legacy form.
package project

import (
	"github.com/splotview/splotview/src/datasource"
	"github.com/splotview/splotview/src/session"
)

// FileExt is the project file extension.
const FileExt = ".splot"

// ColumnRecord is one persisted dataset column.
type ColumnRecord struct {
	Name   string
	Unit   string
	Values []float64
}

// FileRecord is one persisted dataset: the full column data plus the path it
// was originally imported from, so a loaded project is self-contained.
type FileRecord struct {
	Name         string
	OriginalPath string
	Columns      []ColumnRecord
}

// Bound is an optional axis limit in persisted form. gob omits zero-valued
// fields entirely, so a bare *float64 holding an explicit 0 would decode as
// nil and the limit would silently fall back to autoscale; the Set flag keeps
// the two cases apart on the wire.
type Bound struct {
	V   float64
	Set bool
}

func boundOf(p *float64) Bound {
	if p == nil {
		return Bound{}
	}
	return Bound{V: *p, Set: true}
}

func (b Bound) ptr() *float64 {
	if !b.Set {
		return nil
	}
	v := b.V
	return &v
}

// TwinRecord persists a secondary y-axis.
type TwinRecord struct {
	YLabel string
	YScale string
	YMin   Bound
	YMax   Bound
}

// AxisRecord persists one diagram cell.
type AxisRecord struct {
	Index  int
	XLabel string
	YLabel string
	YScale string

	XMin Bound
	XMax Bound
	YMin Bound
	YMax Bound

	ShowXLabel bool
	ShowYLabel bool
	ShowXTicks bool
	ShowYTicks bool
	FontName   string
	FontSize   float64

	Twin *TwinRecord
}

// TraceRecord persists one trace, raw samples included.
type TraceRecord struct {
	ID        string
	AxisIndex int

	Label  string
	Unit   string
	File   string
	VarKey string
	XKey   string

	RawX []float64
	RawY []float64

	Color           string
	LineWidth       float64
	LineStyle       string
	Marker          string
	MarkerSize      float64
	MarkerFaceColor string
	MarkerEdgeColor string

	XFactor    float64
	XOffset    float64
	YFactor    float64
	YOffset    float64
	Transform  string
	WindowSize int

	AxisXLabel string
	AxisYLabel string

	AxisXMin Bound
	AxisXMax Bound
	AxisYMin Bound
	AxisYMax Bound

	Side   string
	YScale string
}

// LegendRecord persists one axis legend configuration.
type LegendRecord struct {
	Content  string
	Loc      string
	FontName string
	FontSize float64
}

// PageRecord persists one page grid.
type PageRecord struct {
	Rows       int
	Cols       int
	Title      string
	Axes       []AxisRecord
	Traces     map[string]TraceRecord
	LinkIDs    map[int]string
	Legends    map[int]LegendRecord
	TraceCount int
}

// Record is the root of a persisted project.
type Record struct {
	Version int
	Files   []FileRecord
	Pages   []PageRecord
	Current int
}

// recordVersion is bumped on incompatible layout changes.
const recordVersion = 2

// Snapshot flattens a live session into its persisted form.
func Snapshot(s *session.Session) *Record {
	r := &Record{Version: recordVersion, Current: s.Current}

	for _, name := range s.Files.Names() {
		e, ok := s.Files.Get(name)
		if !ok {
			continue
		}
		fr := FileRecord{Name: name, OriginalPath: e.OriginalPath}
		for _, col := range e.Dataset.Vars() {
			vals, _ := e.Dataset.Values(col)
			fr.Columns = append(fr.Columns, ColumnRecord{
				Name:   col,
				Unit:   e.Dataset.Unit(col),
				Values: append([]float64(nil), vals...),
			})
		}
		r.Files = append(r.Files, fr)
	}

	for _, p := range s.Pages {
		r.Pages = append(r.Pages, snapshotPage(p))
	}
	return r
}

func snapshotPage(p *session.Page) PageRecord {
	pr := PageRecord{
		Rows:       p.Rows,
		Cols:       p.Cols,
		Title:      p.Title,
		Traces:     map[string]TraceRecord{},
		LinkIDs:    map[int]string{},
		Legends:    map[int]LegendRecord{},
		TraceCount: p.TraceCount,
	}

	for _, ax := range p.Axes {
		ar := AxisRecord{
			Index:      ax.Index,
			XLabel:     ax.XLabel,
			YLabel:     ax.YLabel,
			YScale:     ax.YScale,
			XMin:       boundOf(ax.XMin),
			XMax:       boundOf(ax.XMax),
			YMin:       boundOf(ax.YMin),
			YMax:       boundOf(ax.YMax),
			ShowXLabel: ax.ShowXLabel,
			ShowYLabel: ax.ShowYLabel,
			ShowXTicks: ax.ShowXTicks,
			ShowYTicks: ax.ShowYTicks,
			FontName:   ax.FontName,
			FontSize:   ax.FontSize,
		}
		if ax.Twin != nil {
			ar.Twin = &TwinRecord{
				YLabel: ax.Twin.YLabel,
				YScale: ax.Twin.YScale,
				YMin:   boundOf(ax.Twin.YMin),
				YMax:   boundOf(ax.Twin.YMax),
			}
		}
		pr.Axes = append(pr.Axes, ar)
	}

	for id, t := range p.Traces {
		pr.Traces[id] = TraceRecord{
			ID:              t.ID,
			AxisIndex:       t.AxisIndex,
			Label:           t.Label,
			Unit:            t.Unit,
			File:            t.File,
			VarKey:          t.VarKey,
			XKey:            t.XKey,
			RawX:            append([]float64(nil), t.RawX...),
			RawY:            append([]float64(nil), t.RawY...),
			Color:           t.Color,
			LineWidth:       t.LineWidth,
			LineStyle:       t.LineStyle,
			Marker:          t.Marker,
			MarkerSize:      t.MarkerSize,
			MarkerFaceColor: t.MarkerFaceColor,
			MarkerEdgeColor: t.MarkerEdgeColor,
			XFactor:         t.XFactor,
			XOffset:         t.XOffset,
			YFactor:         t.YFactor,
			YOffset:         t.YOffset,
			Transform:       string(t.Transform),
			WindowSize:      t.WindowSize,
			AxisXLabel:      t.AxisXLabel,
			AxisYLabel:      t.AxisYLabel,
			AxisXMin:        boundOf(t.AxisXMin),
			AxisXMax:        boundOf(t.AxisXMax),
			AxisYMin:        boundOf(t.AxisYMin),
			AxisYMax:        boundOf(t.AxisYMax),
			Side:            string(t.Side),
			YScale:          t.YScale,
		}
	}

	for idx, id := range p.Links.LinkIDs {
		pr.LinkIDs[idx] = id
	}
	for idx, cfg := range p.Legends.Configs {
		pr.Legends[idx] = LegendRecord{
			Content:  string(cfg.Content),
			Loc:      string(cfg.Loc),
			FontName: cfg.FontName,
			FontSize: cfg.FontSize,
		}
	}
	return pr
}

// Restore rebuilds a live session from its persisted form. The returned
// session starts with an empty history.
func Restore(r *Record) *session.Session {
	files := datasource.NewRegistry()
	for _, fr := range r.Files {
		ds := datasource.NewDataset()
		for _, col := range fr.Columns {
			ds.AddColumn(col.Name, col.Values, col.Unit)
		}
		files.Add(fr.Name, ds, fr.OriginalPath)
	}

	s := session.NewSession(files)
	s.Pages = nil
	for _, pr := range r.Pages {
		s.AdoptPage(restorePage(pr))
	}
	if len(s.Pages) == 0 {
		s.AdoptPage(session.NewPage(1, 1))
	}
	s.Current = r.Current
	if s.Current < 0 || s.Current >= len(s.Pages) {
		s.Current = 0
	}
	return s
}

func restorePage(pr PageRecord) *session.Page {
	p := session.NewPage(pr.Rows, pr.Cols)
	p.Title = pr.Title
	p.TraceCount = pr.TraceCount

	for i, ar := range pr.Axes {
		if i >= len(p.Axes) {
			break
		}
		ax := p.Axes[i]
		ax.XLabel = ar.XLabel
		ax.YLabel = ar.YLabel
		if ar.YScale != "" {
			ax.YScale = ar.YScale
		}
		ax.XMin, ax.XMax = ar.XMin.ptr(), ar.XMax.ptr()
		ax.YMin, ax.YMax = ar.YMin.ptr(), ar.YMax.ptr()
		ax.ShowXLabel = ar.ShowXLabel
		ax.ShowYLabel = ar.ShowYLabel
		ax.ShowXTicks = ar.ShowXTicks
		ax.ShowYTicks = ar.ShowYTicks
		ax.FontName = ar.FontName
		ax.FontSize = ar.FontSize
		if ar.Twin != nil {
			ax.Twin = &session.TwinAxis{
				YLabel: ar.Twin.YLabel,
				YScale: ar.Twin.YScale,
				YMin:   ar.Twin.YMin.ptr(),
				YMax:   ar.Twin.YMax.ptr(),
			}
		}
	}

	for id, tr := range pr.Traces {
		t := session.NewTrace(tr.ID, tr.AxisIndex)
		t.Label = tr.Label
		t.Unit = tr.Unit
		t.File = tr.File
		t.VarKey = tr.VarKey
		if tr.XKey != "" {
			t.XKey = tr.XKey
		}
		t.RawX = tr.RawX
		t.RawY = tr.RawY
		t.Color = tr.Color
		t.LineWidth = tr.LineWidth
		t.LineStyle = tr.LineStyle
		t.Marker = tr.Marker
		t.MarkerSize = tr.MarkerSize
		t.MarkerFaceColor = tr.MarkerFaceColor
		t.MarkerEdgeColor = tr.MarkerEdgeColor
		t.XFactor = tr.XFactor
		t.XOffset = tr.XOffset
		t.YFactor = tr.YFactor
		t.YOffset = tr.YOffset
		t.Transform = session.TransformMode(tr.Transform)
		t.WindowSize = tr.WindowSize
		t.AxisXLabel = tr.AxisXLabel
		t.AxisYLabel = tr.AxisYLabel
		t.AxisXMin, t.AxisXMax = tr.AxisXMin.ptr(), tr.AxisXMax.ptr()
		t.AxisYMin, t.AxisYMax = tr.AxisYMin.ptr(), tr.AxisYMax.ptr()
		t.Side = session.YSide(tr.Side)
		if tr.YScale != "" {
			t.YScale = tr.YScale
		}
		p.Traces[id] = t
	}

	if len(pr.LinkIDs) > 0 {
		byID := map[string][]int{}
		for idx, id := range pr.LinkIDs {
			byID[id] = append(byID[id], idx)
		}
		for id, indices := range byID {
			p.Links.CreateGroup(indices, id)
		}
	}
	for idx, lr := range pr.Legends {
		p.Legends.SetConfig(idx, &session.LegendConfig{
			Content:  session.LegendContent(lr.Content),
			Loc:      session.LegendPosition(lr.Loc),
			FontName: lr.FontName,
			FontSize: lr.FontSize,
		})
	}
	return p
}
