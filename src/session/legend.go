package session

import "fmt"

// LegendContent selects what a trace's legend label is composed from.
type LegendContent string

const (
	LegendBoth      LegendContent = "both"
	LegendLabelOnly LegendContent = "label"
	LegendFileOnly  LegendContent = "file"
	LegendNone      LegendContent = "none"
)

// LegendPosition names a legend anchor. Manual requests a user-draggable
// legend; OutsideRight anchors outside the plot bounds.
type LegendPosition string

const (
	LegendBest         LegendPosition = "best"
	LegendUpperRight   LegendPosition = "upper right"
	LegendUpperLeft    LegendPosition = "upper left"
	LegendLowerRight   LegendPosition = "lower right"
	LegendLowerLeft    LegendPosition = "lower left"
	LegendOutsideRight LegendPosition = "outside right"
	LegendManual       LegendPosition = "manual"
)

// LegendConfig is the per-axis legend configuration.
type LegendConfig struct {
	Content  LegendContent
	Loc      LegendPosition
	FontName string
	FontSize float64
}

func defaultLegendConfig() *LegendConfig {
	return &LegendConfig{Content: LegendBoth, Loc: LegendBest}
}

// LegendEntry is one composed legend line handed to the renderer.
type LegendEntry struct {
	TraceID string
	Label   string
}

// LegendSpec is the legend the renderer should draw for one axis. A nil spec
// means the legend is removed entirely rather than rendered empty.
type LegendSpec struct {
	Entries []LegendEntry
	Loc     LegendPosition
}

// LegendManager stores per-axis legend configuration and composes displayed
// labels. It has no side effects of its own; the renderer consumes the specs
// it produces, so applying twice yields the same visible legend.
type LegendManager struct {
	Configs map[int]*LegendConfig
}

func NewLegendManager(numAxes int) *LegendManager {
	m := &LegendManager{Configs: map[int]*LegendConfig{}}
	for i := 0; i < numAxes; i++ {
		m.Configs[i] = defaultLegendConfig()
	}
	return m
}

// Config returns the configuration for an axis, falling back to defaults.
func (m *LegendManager) Config(axIdx int) *LegendConfig {
	if c, ok := m.Configs[axIdx]; ok {
		return c
	}
	return defaultLegendConfig()
}

func (m *LegendManager) SetConfig(axIdx int, cfg *LegendConfig) {
	m.Configs[axIdx] = cfg
}

// ComposeLabel builds the displayed label for one trace under a content mode.
func ComposeLabel(t *Trace, mode LegendContent) string {
	switch mode {
	case LegendFileOnly:
		return t.File
	case LegendLabelOnly:
		return t.Label
	default:
		return fmt.Sprintf("%s @ %s", t.Label, t.File)
	}
}

// Spec composes the legend for one axis from the traces rendered on it
// (primary and twin side alike). Returns nil for content mode none or when
// the axis has no traces.
func (m *LegendManager) Spec(axIdx int, traces []*Trace) *LegendSpec {
	cfg := m.Config(axIdx)
	if cfg.Content == LegendNone || len(traces) == 0 {
		return nil
	}
	spec := &LegendSpec{Loc: cfg.Loc}
	for _, t := range traces {
		spec.Entries = append(spec.Entries, LegendEntry{
			TraceID: t.ID,
			Label:   ComposeLabel(t, cfg.Content),
		})
	}
	return spec
}
