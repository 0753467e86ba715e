// Package render draws session pages with go-chart: one sub-chart per grid
// cell composited into a single page image. It implements the session's
// Renderer collaborator.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/splotview/splotview/src/logging"
	"github.com/splotview/splotview/src/session"
)

// PageRenderer renders pages at a fixed pixel size. OnImage, when set,
// receives every rendered page image (the CLI uses it to collect exports; a
// display surface would blit it).
type PageRenderer struct {
	Width  int
	Height int

	// Hint is an optional footer overlay drawn on every page.
	Hint string

	OnImage func(p *session.Page, img image.Image)
}

func New(width, height int) *PageRenderer {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 800
	}
	return &PageRenderer{Width: width, Height: height}
}

// Draw renders the page and hands the image to OnImage.
func (r *PageRenderer) Draw(p *session.Page) error {
	img, err := r.RenderPage(p)
	if err != nil {
		return err
	}
	if r.OnImage != nil {
		r.OnImage(p, img)
	}
	return nil
}

// RenderPage composites the page's rows×cols axis charts into one image.
// Axes without traces render as blank cells.
func (r *PageRenderer) RenderPage(p *session.Page) (image.Image, error) {
	out := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	cw := r.Width / p.Cols
	ch := r.Height / p.Rows
	for i := 0; i < p.NumAxes(); i++ {
		cell, err := r.renderAxis(p, i, cw, ch)
		if err != nil {
			logging.Warnf("render: axis %d of %q: %v", i, p.Title, err)
			cell = blank(cw, ch)
		}
		x := (i % p.Cols) * cw
		y := (i / p.Cols) * ch
		draw.Draw(out, image.Rect(x, y, x+cw, y+ch), cell, cell.Bounds().Min, draw.Src)
	}

	hint := r.Hint
	if hint == "" {
		hint = p.Title
	}
	return drawHint(out, hint), nil
}

func (r *PageRenderer) renderAxis(p *session.Page, axIdx, w, h int) (image.Image, error) {
	traces := p.TracesOnAxis(axIdx)
	if len(traces) == 0 {
		return blank(w, h), nil
	}
	ax := p.Axes[axIdx]
	spec := p.Legends.Spec(axIdx, traces)

	hasLeft := false
	for _, t := range traces {
		if t.Side != session.SideRight {
			hasLeft = true
			break
		}
	}

	var series []chart.Series
	for _, t := range traces {
		xs, ys := session.RenderTrace(t)
		if len(xs) == 0 {
			continue
		}
		name := t.Label
		if spec != nil {
			for _, e := range spec.Entries {
				if e.TraceID == t.ID {
					name = e.Label
					break
				}
			}
		}
		cs := chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   traceStyle(t),
		}
		// With no left-side trace the secondary axis would leave the primary
		// one rangeless, so everything stays on the primary axis.
		if t.Side == session.SideRight && hasLeft {
			cs.YAxis = chart.YAxisSecondary
		}
		series = append(series, cs)
	}
	if len(series) == 0 {
		return blank(w, h), nil
	}

	cc := chart.Chart{
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      chart.XAxis{Name: ax.XLabel},
		YAxis:      chart.YAxis{Name: ax.YLabel},
		Series:     series,
	}
	if !ax.ShowXLabel {
		cc.XAxis.Name = ""
	}
	if !ax.ShowYLabel {
		cc.YAxis.Name = ""
	}
	if !ax.ShowXTicks {
		cc.XAxis.TickStyle.Hidden = true
	}
	if !ax.ShowYTicks {
		cc.YAxis.TickStyle.Hidden = true
	}

	if ax.XMin != nil && ax.XMax != nil && *ax.XMax > *ax.XMin {
		cc.XAxis.Range = &chart.ContinuousRange{Min: *ax.XMin, Max: *ax.XMax}
		cc.XAxis.Ticks = niceTicks(*ax.XMin, *ax.XMax, 7)
	}
	cc.YAxis.Range = axisRange(ax.YScale, ax.YMin, ax.YMax)
	if ax.YMin != nil && ax.YMax != nil && ax.YScale != session.ScaleLog {
		cc.YAxis.Ticks = niceTicks(*ax.YMin, *ax.YMax, 6)
	}
	if ax.Twin != nil {
		if hasLeft {
			cc.YAxisSecondary = chart.YAxis{
				Name:  ax.Twin.YLabel,
				Range: axisRange(ax.Twin.YScale, ax.Twin.YMin, ax.Twin.YMax),
			}
		} else {
			cc.YAxis.Name = ax.Twin.YLabel
			cc.YAxis.Range = axisRange(ax.Twin.YScale, ax.Twin.YMin, ax.Twin.YMax)
		}
	}

	if spec != nil {
		cc.Elements = []chart.Renderable{chart.Legend(&cc)}
	}

	var buf bytes.Buffer
	if err := cc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// axisRange builds a go-chart range for explicit bounds, logarithmic when the
// scale asks for it and the bounds allow it.
func axisRange(scale string, min, max *float64) chart.Range {
	if min == nil || max == nil || !(*max > *min) {
		if scale == session.ScaleLog {
			return &chart.LogarithmicRange{}
		}
		return nil
	}
	if scale == session.ScaleLog && *min > 0 {
		return &chart.LogarithmicRange{Min: *min, Max: *max}
	}
	return &chart.ContinuousRange{Min: *min, Max: *max}
}

// traceStyle maps trace style settings onto a go-chart series style.
func traceStyle(t *session.Trace) chart.Style {
	st := chart.Style{
		StrokeColor:     parseHexColor(t.Color),
		StrokeWidth:     t.LineWidth,
		StrokeDashArray: dashArray(t.LineStyle),
	}
	if t.LineStyle == session.LineNone {
		st.StrokeWidth = 0
	}
	if t.Marker != "" {
		st.DotColor = parseHexColor(t.MarkerFaceColor)
		st.DotWidth = t.MarkerSize
	}
	return st
}

func dashArray(style string) []float64 {
	switch style {
	case session.LineDashed:
		return []float64{5, 5}
	case session.LineDotted:
		return []float64{2, 2}
	case session.LineDashDot:
		return []float64{5, 2, 2, 2}
	default:
		return nil
	}
}

// niceTicks generates up to n desired tick marks between [min, max] using nice increments.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	// Preferred tick steps: 1, 2, 2.5, 5, 10 ... scaled by power of 10
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	ticks := []chart.Tick{}
	for v := start; v <= end+bestStep/2; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// WritePNG encodes an image to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("render: encode %s: %w", path, err)
	}
	return nil
}
