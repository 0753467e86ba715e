package session

import (
	"testing"

	"github.com/splotview/splotview/src/datasource"
)

func addTestTrace(t *testing.T, p *Page, axIdx int) *Trace {
	t.Helper()
	tr, err := p.AddTrace([]float64{0, 1, 2}, []float64{1, 2, 3}, "V", "mV", "a.csv", "V", "index", "Index (Time)", axIdx, nil)
	if err != nil {
		t.Fatalf("add trace: %v", err)
	}
	return tr
}

func TestAddTrace_DefaultsAndLabels(t *testing.T) {
	p := NewPage(2, 2)
	tr := addTestTrace(t, p, 1)

	if tr.ID != "t_0" || p.TraceCount != 1 {
		t.Fatalf("id %q count %d", tr.ID, p.TraceCount)
	}
	if tr.Color != DefaultColor || tr.WindowSize != 5 || tr.Side != SideLeft {
		t.Fatalf("defaults not applied: %+v", tr)
	}
	if got := p.Axes[1].YLabel; got != "V [mV]" {
		t.Fatalf("axis y label %q want %q", got, "V [mV]")
	}
	if tr.AxisYLabel != "V [mV]" || tr.AxisXLabel != "Index (Time)" {
		t.Fatalf("trace-side label mirrors: %+v", tr)
	}
}

func TestAddTrace_OutOfRangeAxisClampsToZero(t *testing.T) {
	p := NewPage(1, 1)
	tr := addTestTrace(t, p, 9)
	if tr.AxisIndex != 0 {
		t.Fatalf("axis index %d want 0", tr.AxisIndex)
	}
}

func TestAddTrace_InvalidStyleRolledBack(t *testing.T) {
	p := NewPage(1, 1)
	_, err := p.AddTrace(nil, nil, "V", "", "a.csv", "V", "index", "", 0,
		&TraceUpdate{WindowSize: Int(0)})
	if err == nil {
		t.Fatalf("expected a window size error")
	}
	if p.TraceCount != 0 || len(p.Traces) != 0 {
		t.Fatalf("failed add leaked state: count=%d traces=%d", p.TraceCount, len(p.Traces))
	}
}

func TestAddTrace_RightSideUsesTwin(t *testing.T) {
	p := NewPage(1, 1)
	_, err := p.AddTrace([]float64{0}, []float64{1}, "I", "A", "a.csv", "I", "index", "", 0,
		&TraceUpdate{Side: Side(SideRight)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	tw := p.Axes[0].Twin
	if tw == nil || tw.YLabel != "I [A]" {
		t.Fatalf("twin axis not initialized: %+v", tw)
	}
}

func TestUpdateTrace_KeepCurrentSemantics(t *testing.T) {
	p := NewPage(1, 1)
	tr := addTestTrace(t, p, 0)

	if err := p.UpdateTrace(tr.ID, TraceUpdate{Color: Str("#ff0000")}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if tr.Color != "#ff0000" {
		t.Fatalf("color not applied")
	}
	// Unset fields keep their values.
	if tr.Label != "V" || tr.WindowSize != 5 || tr.LineWidth != 1.5 {
		t.Fatalf("unset fields changed: %+v", tr)
	}
}

func TestUpdateTrace_InvalidRejectedAtomically(t *testing.T) {
	p := NewPage(1, 1)
	tr := addTestTrace(t, p, 0)

	err := p.UpdateTrace(tr.ID, TraceUpdate{Label: Str("new"), WindowSize: Int(-1)}, nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if tr.Label != "V" {
		t.Fatalf("rejected update partially applied: label %q", tr.Label)
	}
}

func TestUpdateTrace_ScalingChangeRerunsAutoscale(t *testing.T) {
	p := NewPage(1, 1)
	tr := addTestTrace(t, p, 0)

	if err := p.UpdateTrace(tr.ID, TraceUpdate{YFactor: Float(1000)}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	ax := p.Axes[0]
	if ax.YMax == nil || *ax.YMax < 3000 {
		t.Fatalf("autoscale did not follow the factor change: ymax %v", ax.YMax)
	}
}

func TestUpdateTrace_ExplicitLimitsSuppressAutoscale(t *testing.T) {
	p := NewPage(1, 1)
	tr := addTestTrace(t, p, 0)

	if err := p.UpdateTrace(tr.ID, TraceUpdate{AxisYMin: Float(0), AxisYMax: Float(10)}, nil); err != nil {
		t.Fatalf("set limits: %v", err)
	}
	if err := p.UpdateTrace(tr.ID, TraceUpdate{YFactor: Float(1000)}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if *p.Axes[0].YMax != 10 {
		t.Fatalf("explicit limit overwritten by autoscale: %v", *p.Axes[0].YMax)
	}

	// Releasing the limits hands the bounds back to autoscale on the next
	// scaling change.
	if err := p.UpdateTrace(tr.ID, TraceUpdate{ClearYLimits: true, ClearXLimits: true}, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if tr.AxisYMin != nil || p.Axes[0].YMin != nil {
		t.Fatalf("limits not cleared")
	}
}

func TestUpdateTrace_XKeySwitchRefetches(t *testing.T) {
	files := datasource.NewRegistry()
	ds := datasource.NewDataset()
	ds.AddColumn("V", []float64{1, 2, 3}, "")
	ds.AddColumn("tim", []float64{10, 20, 30}, "s")
	files.Add("a.csv", ds, "/tmp/a.csv")

	p := NewPage(1, 1)
	tr := addTestTrace(t, p, 0)

	if err := p.UpdateTrace(tr.ID, TraceUpdate{XKey: Str("tim")}, files); err != nil {
		t.Fatalf("switch x key: %v", err)
	}
	if tr.XKey != "tim" || tr.RawX[2] != 30 {
		t.Fatalf("raw_x not refetched: key=%q raw=%v", tr.XKey, tr.RawX)
	}

	// A vanished column keeps the previous raw values.
	if err := p.UpdateTrace(tr.ID, TraceUpdate{XKey: Str("gone")}, files); err != nil {
		t.Fatalf("switch to stale key: %v", err)
	}
	if tr.XKey != "gone" || tr.RawX[2] != 30 {
		t.Fatalf("stale key must keep previous raw_x: key=%q raw=%v", tr.XKey, tr.RawX)
	}
}

func TestReloadData_SkipsVanishedKeys(t *testing.T) {
	p := NewPage(1, 1)
	kept := addTestTrace(t, p, 0)
	gone, err := p.AddTrace([]float64{0, 1}, []float64{7, 8}, "I", "", "a.csv", "I", "index", "", 0, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	ds := datasource.NewDataset()
	ds.AddColumn("V", []float64{9, 9, 9}, "")

	if n := p.ReloadData("a.csv", "b.csv", ds); n != 1 {
		t.Fatalf("reloaded %d traces want 1", n)
	}
	if kept.File != "b.csv" || kept.RawY[0] != 9 {
		t.Fatalf("matching trace not reloaded: %+v", kept)
	}
	if gone.File != "a.csv" || gone.RawY[0] != 7 {
		t.Fatalf("trace with vanished key must keep previous values: %+v", gone)
	}
}

func TestAutoscaleAxis_WritesBoundsEverywhere(t *testing.T) {
	p := NewPage(1, 1)
	a := addTestTrace(t, p, 0)
	b, err := p.AddTrace([]float64{0, 1}, []float64{10, 20}, "I", "", "a.csv", "I", "index", "", 0, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	p.AutoscaleAxis(0, "y")
	ax := p.Axes[0]
	if ax.YMin == nil || ax.YMax == nil {
		t.Fatalf("axis bounds not set")
	}
	if a.AxisYMin == nil || b.AxisYMin == nil || *a.AxisYMin != *ax.YMin {
		t.Fatalf("bounds not written back to all trace records")
	}
	if !(*ax.YMin < 1 && *ax.YMax > 20) {
		t.Fatalf("pooled bounds (%v, %v) do not contain [1, 20]", *ax.YMin, *ax.YMax)
	}
}

func TestTracesOnAxis_CreationOrder(t *testing.T) {
	p := NewPage(1, 1)
	for i := 0; i < 3; i++ {
		addTestTrace(t, p, 0)
	}
	got := p.TracesOnAxis(0)
	if len(got) != 3 || got[0].ID != "t_0" || got[2].ID != "t_2" {
		t.Fatalf("order: %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
}
