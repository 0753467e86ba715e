// Package session implements the chart-viewing session state engine: the
// Trace/Axis/Page/Session data model, the transform and autoscale pipelines,
// legend composition, cross-page x-range linking, and undo history. Rendering
// is delegated to a Renderer collaborator; dataset parsing to the datasource
// package.
package session

import (
	"fmt"
)

// TransformMode selects the preprocessing step applied to raw_y before
// factor/offset scaling.
type TransformMode string

const (
	TransformNone          TransformMode = "none"
	TransformMovingAverage TransformMode = "moving_average"
	TransformCumulativeSum TransformMode = "cumulative_sum"
)

// YSide selects the primary (left) or twin (right) y-axis of a diagram.
type YSide string

const (
	SideLeft  YSide = "left"
	SideRight YSide = "right"
)

// Y scale names.
const (
	ScaleLinear = "linear"
	ScaleLog    = "log"
)

// Trace is one plotted series: raw samples, style, transform settings, and
// references into the dataset registry used to re-fetch data on reload.
// RawX/RawY are owned exclusively by the trace, replaced wholesale on reload
// and never mutated in place; every recomputation (rendering, autoscale)
// starts from them.
type Trace struct {
	ID        string
	AxisIndex int

	Label string
	Unit  string

	// DataSource references.
	File   string
	VarKey string
	XKey   string

	RawX []float64
	RawY []float64

	// Style.
	Color           string
	LineWidth       float64
	LineStyle       string
	Marker          string
	MarkerSize      float64
	MarkerFaceColor string
	MarkerEdgeColor string

	// Transform settings.
	XFactor    float64
	XOffset    float64
	YFactor    float64
	YOffset    float64
	Transform  TransformMode
	WindowSize int

	// Axis overrides carried on the trace record.
	AxisXLabel string
	AxisYLabel string

	// Explicit bounds; nil means autoscale owns that bound.
	AxisXMin *float64
	AxisXMax *float64
	AxisYMin *float64
	AxisYMax *float64

	Side   YSide
	YScale string
}

// Line style names accepted by traces.
const (
	LineSolid   = "solid"
	LineDashed  = "dashed"
	LineDotted  = "dotted"
	LineDashDot = "dashdot"
	LineNone    = "none"
)

// DefaultColor is the first entry of the standard ten-color plotting cycle.
const DefaultColor = "#1f77b4"

// NewTrace returns a trace with documented defaults applied.
func NewTrace(id string, axisIndex int) *Trace {
	return &Trace{
		ID:              id,
		AxisIndex:       axisIndex,
		XKey:            "index",
		Color:           DefaultColor,
		LineWidth:       1.5,
		LineStyle:       LineSolid,
		Marker:          "",
		MarkerSize:      2.0,
		MarkerFaceColor: DefaultColor,
		MarkerEdgeColor: DefaultColor,
		XFactor:         1.0,
		XOffset:         0.0,
		YFactor:         1.0,
		YOffset:         0.0,
		Transform:       TransformNone,
		WindowSize:      5,
		Side:            SideLeft,
		YScale:          ScaleLinear,
	}
}

// Validate checks the transform and scale settings once at the setting
// boundary; the pipeline itself assumes a valid trace.
func (t *Trace) Validate() error {
	if t.WindowSize < 1 {
		return fmt.Errorf("session: window size %d is invalid (must be >= 1)", t.WindowSize)
	}
	switch t.Transform {
	case TransformNone, TransformMovingAverage, TransformCumulativeSum:
	default:
		return fmt.Errorf("session: unknown transform mode %q", t.Transform)
	}
	switch t.Side {
	case SideLeft, SideRight:
	default:
		return fmt.Errorf("session: unknown y side %q", t.Side)
	}
	switch t.YScale {
	case ScaleLinear, ScaleLog:
	default:
		return fmt.Errorf("session: unknown y scale %q", t.YScale)
	}
	return nil
}

// TraceUpdate carries partial trace settings from an edit action. Nil fields
// keep the current value; limit fields set a bound, Clear*Limits releases
// both bounds of a direction back to autoscale ownership.
type TraceUpdate struct {
	Label *string
	Side  *YSide

	Color           *string
	LineWidth       *float64
	LineStyle       *string
	Marker          *string
	MarkerSize      *float64
	MarkerFaceColor *string
	MarkerEdgeColor *string

	XFactor    *float64
	XOffset    *float64
	YFactor    *float64
	YOffset    *float64
	Transform  *TransformMode
	WindowSize *int

	AxisXLabel *string
	AxisYLabel *string
	YScale     *string

	AxisXMin *float64
	AxisXMax *float64
	AxisYMin *float64
	AxisYMax *float64

	ClearXLimits bool
	ClearYLimits bool

	// XKey switches the x reference column; raw_x is re-fetched from the
	// dataset registry when set.
	XKey *string
}

// touchesScaling reports whether the update changes factor/offset/transform
// settings, which forces an autoscale re-run when no explicit limits exist.
func (u *TraceUpdate) touchesScaling() bool {
	return u.XFactor != nil || u.XOffset != nil || u.YFactor != nil ||
		u.YOffset != nil || u.Transform != nil || u.WindowSize != nil
}

// hasExplicitLimits reports whether the update itself sets any bound.
func (u *TraceUpdate) hasExplicitLimits() bool {
	return u.AxisXMin != nil || u.AxisXMax != nil || u.AxisYMin != nil || u.AxisYMax != nil
}

// apply copies the set fields of u onto t. Limit and x-key handling live in
// Page.UpdateTrace, which also owns the axis-info mirrors.
func (u *TraceUpdate) apply(t *Trace) {
	if u.Label != nil {
		t.Label = *u.Label
	}
	if u.Side != nil {
		t.Side = *u.Side
	}
	if u.Color != nil {
		t.Color = *u.Color
	}
	if u.LineWidth != nil {
		t.LineWidth = *u.LineWidth
	}
	if u.LineStyle != nil {
		t.LineStyle = *u.LineStyle
	}
	if u.Marker != nil {
		t.Marker = *u.Marker
	}
	if u.MarkerSize != nil {
		t.MarkerSize = *u.MarkerSize
	}
	if u.MarkerFaceColor != nil {
		t.MarkerFaceColor = *u.MarkerFaceColor
	}
	if u.MarkerEdgeColor != nil {
		t.MarkerEdgeColor = *u.MarkerEdgeColor
	}
	if u.XFactor != nil {
		t.XFactor = *u.XFactor
	}
	if u.XOffset != nil {
		t.XOffset = *u.XOffset
	}
	if u.YFactor != nil {
		t.YFactor = *u.YFactor
	}
	if u.YOffset != nil {
		t.YOffset = *u.YOffset
	}
	if u.Transform != nil {
		t.Transform = *u.Transform
	}
	if u.WindowSize != nil {
		t.WindowSize = *u.WindowSize
	}
	if u.AxisXLabel != nil {
		t.AxisXLabel = *u.AxisXLabel
	}
	if u.AxisYLabel != nil {
		t.AxisYLabel = *u.AxisYLabel
	}
	if u.YScale != nil {
		t.YScale = *u.YScale
	}
}

// Float returns a pointer to v, for building TraceUpdate literals.
func Float(v float64) *float64 { return &v }

// Str returns a pointer to v.
func Str(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Mode returns a pointer to m.
func Mode(m TransformMode) *TransformMode { return &m }

// Side returns a pointer to s.
func Side(s YSide) *YSide { return &s }
