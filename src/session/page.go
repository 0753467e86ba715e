package session

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/splotview/splotview/src/datasource"
)

// TwinAxis is the secondary (right-side) y-axis of a diagram. It shares the
// primary axis's x-range but keeps its own y-range, label, and scale.
type TwinAxis struct {
	YLabel string
	YScale string
	YMin   *float64
	YMax   *float64
}

// AxisInfo is one diagram cell of a page grid: labels, scale, explicit
// ranges, display flags, and fonts. Nil range bounds are owned by autoscale.
type AxisInfo struct {
	Index  int
	XLabel string
	YLabel string
	YScale string

	XMin *float64
	XMax *float64
	YMin *float64
	YMax *float64

	ShowXLabel bool
	ShowYLabel bool
	ShowXTicks bool
	ShowYTicks bool
	FontName   string
	FontSize   float64

	Twin *TwinAxis
}

func newAxisInfo(index int) *AxisInfo {
	return &AxisInfo{
		Index:      index,
		YScale:     ScaleLinear,
		ShowXLabel: true,
		ShowYLabel: true,
		ShowXTicks: true,
		ShowYTicks: true,
		FontSize:   10,
	}
}

// Page is a rows×cols grid of axes sharing one drawing surface, plus the
// traces plotted on them. The page is the sole owner of its surface; the
// renderer draws it in one pass per completed action.
type Page struct {
	Rows  int
	Cols  int
	Title string

	Axes       []*AxisInfo
	Traces     map[string]*Trace
	TraceCount int

	Links   *XLinkManager
	Legends *LegendManager

	applyingRange guard
	onRangeChange func(linkID string, xmin, xmax float64)
}

func NewPage(rows, cols int) *Page {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	p := &Page{
		Rows:    rows,
		Cols:    cols,
		Traces:  map[string]*Trace{},
		Links:   NewXLinkManager(),
		Legends: NewLegendManager(rows * cols),
	}
	for i := 0; i < rows*cols; i++ {
		p.Axes = append(p.Axes, newAxisInfo(i))
	}
	return p
}

// NumAxes returns the grid cell count.
func (p *Page) NumAxes() int { return p.Rows * p.Cols }

// SetRangeListener registers the callback the page uses to report
// user-driven x-range changes on linked axes. The session points this at its
// cross-page broadcast.
func (p *Page) SetRangeListener(fn func(linkID string, xmin, xmax float64)) {
	p.onRangeChange = fn
}

func (p *Page) nextTraceID() string {
	id := fmt.Sprintf("t_%d", p.TraceCount)
	p.TraceCount++
	return id
}

// AddTrace plots a new series onto an axis. The raw arrays are copied so the
// trace owns them exclusively. style may be nil for defaults.
func (p *Page) AddTrace(x, y []float64, label, unit, file, varKey, xKey, xLabel string, axIdx int, style *TraceUpdate) (*Trace, error) {
	if axIdx < 0 || axIdx >= p.NumAxes() {
		axIdx = 0
	}
	if label == "" {
		label = "Value"
	}

	t := NewTrace(p.nextTraceID(), axIdx)
	t.Label = label
	t.Unit = unit
	t.File = file
	t.VarKey = varKey
	if xKey != "" {
		t.XKey = xKey
	}
	t.RawX = append([]float64(nil), x...)
	t.RawY = append([]float64(nil), y...)
	if style != nil {
		style.apply(t)
		if style.AxisXMin != nil {
			t.AxisXMin = style.AxisXMin
		}
		if style.AxisXMax != nil {
			t.AxisXMax = style.AxisXMax
		}
		if style.AxisYMin != nil {
			t.AxisYMin = style.AxisYMin
		}
		if style.AxisYMax != nil {
			t.AxisYMax = style.AxisYMax
		}
	}
	if err := t.Validate(); err != nil {
		p.TraceCount-- // id not consumed
		return nil, err
	}

	ax := p.Axes[axIdx]
	if ax.XLabel == "" {
		ax.XLabel = xLabel
	}
	if t.Side == SideRight {
		tw := p.ensureTwin(axIdx)
		if tw.YLabel == "" {
			tw.YLabel = fmt.Sprintf("%s [%s]", label, unit)
		}
	} else if ax.YLabel == "" || ax.YLabel == "Value" {
		ax.YLabel = fmt.Sprintf("%s [%s]", label, unit)
	}
	if t.AxisXLabel == "" {
		t.AxisXLabel = ax.XLabel
	}
	if t.AxisYLabel == "" {
		if t.Side == SideRight {
			t.AxisYLabel = ax.Twin.YLabel
		} else {
			t.AxisYLabel = ax.YLabel
		}
	}

	p.Traces[t.ID] = t
	return t, nil
}

func (p *Page) ensureTwin(axIdx int) *TwinAxis {
	ax := p.Axes[axIdx]
	if ax.Twin == nil {
		ax.Twin = &TwinAxis{YScale: ScaleLinear}
	}
	return ax.Twin
}

// UpdateTrace applies a partial settings record to one trace, mirroring the
// changed axis attributes onto the owning AxisInfo (or its twin for
// right-side traces). files is consulted only for x-key switches and may be
// nil; a stale x-key keeps the previous raw values. When the update touches
// factor/offset/transform settings and no explicit limits are in play, the
// affected axis is re-autoscaled.
func (p *Page) UpdateTrace(id string, u TraceUpdate, files *datasource.Registry) error {
	t, ok := p.Traces[id]
	if !ok {
		return fmt.Errorf("session: no such trace %q", id)
	}

	// Validate on a scratch copy so a rejected update leaves the trace as it
	// was.
	scratch := *t
	u.apply(&scratch)
	if err := scratch.Validate(); err != nil {
		return err
	}
	u.apply(t)

	ax := p.Axes[t.AxisIndex]
	if t.Side == SideRight {
		p.ensureTwin(t.AxisIndex)
	}

	if u.AxisXLabel != nil {
		ax.XLabel = *u.AxisXLabel
	}
	if u.AxisYLabel != nil {
		if t.Side == SideRight {
			ax.Twin.YLabel = *u.AxisYLabel
		} else {
			ax.YLabel = *u.AxisYLabel
		}
	}
	if u.YScale != nil {
		if t.Side == SideRight {
			ax.Twin.YScale = *u.YScale
		} else {
			ax.YScale = *u.YScale
		}
	}

	if u.ClearXLimits {
		t.AxisXMin, t.AxisXMax = nil, nil
		ax.XMin, ax.XMax = nil, nil
	}
	if u.ClearYLimits {
		t.AxisYMin, t.AxisYMax = nil, nil
		if t.Side == SideRight {
			ax.Twin.YMin, ax.Twin.YMax = nil, nil
		} else {
			ax.YMin, ax.YMax = nil, nil
		}
	}
	if u.AxisXMin != nil {
		t.AxisXMin = u.AxisXMin
		ax.XMin = u.AxisXMin
	}
	if u.AxisXMax != nil {
		t.AxisXMax = u.AxisXMax
		ax.XMax = u.AxisXMax
	}
	if u.AxisYMin != nil {
		t.AxisYMin = u.AxisYMin
		if t.Side == SideRight {
			ax.Twin.YMin = u.AxisYMin
		} else {
			ax.YMin = u.AxisYMin
		}
	}
	if u.AxisYMax != nil {
		t.AxisYMax = u.AxisYMax
		if t.Side == SideRight {
			ax.Twin.YMax = u.AxisYMax
		} else {
			ax.YMax = u.AxisYMax
		}
	}

	if u.XKey != nil {
		t.XKey = *u.XKey
		if files != nil {
			if ds, ok := files.Dataset(t.File); ok {
				if xv, err := ds.XValues(t.XKey); err == nil {
					t.RawX = append([]float64(nil), xv...)
				}
				// A missing column keeps the previous raw_x untouched.
			}
		}
	}

	if u.touchesScaling() && !u.hasExplicitLimits() && !t.hasExplicitLimits() {
		p.AutoscaleAxis(t.AxisIndex, "both")
	}
	return nil
}

func (t *Trace) hasExplicitLimits() bool {
	return t.AxisXMin != nil || t.AxisXMax != nil || t.AxisYMin != nil || t.AxisYMax != nil
}

// RemoveTrace deletes a trace from the page.
func (p *Page) RemoveTrace(id string) {
	delete(p.Traces, id)
}

// TracesOnAxis returns the traces plotted on one axis (both y sides), in
// creation order.
func (p *Page) TracesOnAxis(axIdx int) []*Trace {
	var out []*Trace
	for _, t := range p.Traces {
		if t.AxisIndex == axIdx {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return traceOrdinal(out[i].ID) < traceOrdinal(out[j].ID)
	})
	return out
}

func traceOrdinal(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "t_"))
	if err != nil {
		return math.MaxInt32
	}
	return n
}

// AutoscaleAxis recomputes nice bounds from all traces on one axis, writes
// them back into every trace record on the axis, and applies them to the
// axis (y bounds also to the twin). dir is "x", "y", or "both".
func (p *Page) AutoscaleAxis(axIdx int, dir string) {
	traces := p.TracesOnAxis(axIdx)
	if len(traces) == 0 {
		return
	}
	ax := p.Axes[axIdx]

	if dir == "x" || dir == "both" {
		if min, max, ok := AutoscaleLimits(traces, DirX); ok {
			for _, t := range traces {
				t.AxisXMin, t.AxisXMax = Float(min), Float(max)
			}
			ax.XMin, ax.XMax = Float(min), Float(max)
		}
	}
	if dir == "y" || dir == "both" {
		if min, max, ok := AutoscaleLimits(traces, DirY); ok {
			for _, t := range traces {
				t.AxisYMin, t.AxisYMax = Float(min), Float(max)
			}
			ax.YMin, ax.YMax = Float(min), Float(max)
			if ax.Twin != nil {
				ax.Twin.YMin, ax.Twin.YMax = Float(min), Float(max)
			}
		}
	}
}

// ReloadData re-fetches raw samples for every trace referencing oldFile from
// ds and renames the reference to newFile. Traces whose variable or x column
// vanished keep their previous raw values untouched (no partial update).
// Returns the number of traces refreshed.
func (p *Page) ReloadData(oldFile, newFile string, ds *datasource.Dataset) int {
	cnt := 0
	for _, t := range p.Traces {
		if t.File != oldFile {
			continue
		}
		yv, ok := ds.Values(t.VarKey)
		if !ok {
			continue
		}
		xv, err := ds.XValues(t.XKey)
		if err != nil {
			continue
		}
		t.RawY = append([]float64(nil), yv...)
		t.RawX = append([]float64(nil), xv...)
		t.File = newFile
		cnt++
	}
	return cnt
}

// LegendSpecs composes the legend for every axis of the page.
func (p *Page) LegendSpecs() map[int]*LegendSpec {
	specs := map[int]*LegendSpec{}
	for i := range p.Axes {
		if s := p.Legends.Spec(i, p.TracesOnAxis(i)); s != nil {
			specs[i] = s
		}
	}
	return specs
}

// ---- X-link range propagation ----

// CreateXLinkGroup links the listed axes under linkID (generated when empty)
// and broadcasts the first member's current range as the group baseline.
func (p *Page) CreateXLinkGroup(axIndices []int, linkID string) string {
	if len(axIndices) == 0 {
		return linkID
	}
	linkID = p.Links.CreateGroup(axIndices, linkID)
	base := p.Axes[axIndices[0]]
	if base.XMin != nil && base.XMax != nil && p.onRangeChange != nil {
		p.onRangeChange(linkID, *base.XMin, *base.XMax)
	}
	return linkID
}

// RemoveFromXLink detaches an axis from its link group.
func (p *Page) RemoveFromXLink(axIdx int) {
	p.Links.RemoveFromGroup(axIdx)
}

// SetXRange records a new x-range on an axis. This is the range-changed
// notification path: when the axis belongs to a link group and the change is
// not itself part of an in-flight broadcast, the new range is reported to the
// session for cross-page fan-out.
func (p *Page) SetXRange(axIdx int, xmin, xmax float64) {
	if axIdx < 0 || axIdx >= len(p.Axes) {
		return
	}
	ax := p.Axes[axIdx]
	ax.XMin, ax.XMax = Float(xmin), Float(xmax)
	if p.applyingRange.Active() {
		return
	}
	if id, ok := p.Links.LinkID(axIdx); ok && p.onRangeChange != nil {
		p.onRangeChange(id, xmin, xmax)
	}
}

// ApplyLinkedXRange applies a broadcast range to every local axis in the
// group. Axes whose range is already numerically close to the target are
// skipped; together with the reentrancy guard this breaks the notification
// feedback loop so a broadcast settles in one pass. Reports whether any axis
// actually changed, so callers can skip redundant redraws.
func (p *Page) ApplyLinkedXRange(linkID string, xmin, xmax float64) bool {
	changed := false
	p.applyingRange.Do(func() {
		for _, idx := range p.Links.Members(linkID) {
			ax := p.Axes[idx]
			if ax.XMin != nil && ax.XMax != nil &&
				closeTo(*ax.XMin, xmin) && closeTo(*ax.XMax, xmax) {
				continue
			}
			p.SetXRange(idx, xmin, xmax)
			changed = true
		}
	})
	return changed
}

// closeTo is a relative-plus-absolute tolerance comparison.
func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}
