package session

import (
	"sort"

	"github.com/google/uuid"
)

// NewLinkID generates a short link-group id.
func NewLinkID() string {
	return uuid.NewString()[:8]
}

// XLinkManager maps a page's axis indices to link-group ids. The derived
// group view is rebuilt from the id map after every mutation rather than
// maintained incrementally, so the two can never drift apart.
type XLinkManager struct {
	LinkIDs map[int]string
	groups  map[string][]int
}

func NewXLinkManager() *XLinkManager {
	return &XLinkManager{LinkIDs: map[int]string{}, groups: map[string][]int{}}
}

// CreateGroup assigns linkID (generated when empty) to every listed axis and
// returns the id used.
func (m *XLinkManager) CreateGroup(axIndices []int, linkID string) string {
	if len(axIndices) == 0 {
		return linkID
	}
	if linkID == "" {
		linkID = NewLinkID()
	}
	for _, idx := range axIndices {
		m.LinkIDs[idx] = linkID
	}
	m.rebuild()
	return linkID
}

// RemoveFromGroup detaches an axis from its link group.
func (m *XLinkManager) RemoveFromGroup(axIdx int) {
	if _, ok := m.LinkIDs[axIdx]; !ok {
		return
	}
	delete(m.LinkIDs, axIdx)
	m.rebuild()
}

// LinkID returns the link-group id of an axis, if any.
func (m *XLinkManager) LinkID(axIdx int) (string, bool) {
	id, ok := m.LinkIDs[axIdx]
	return id, ok
}

// Members returns the axis indices sharing linkID, in ascending order.
func (m *XLinkManager) Members(linkID string) []int {
	if m.groups == nil {
		m.rebuild()
	}
	return m.groups[linkID]
}

// Groups returns all link groups keyed by id.
func (m *XLinkManager) Groups() map[string][]int {
	if m.groups == nil {
		m.rebuild()
	}
	return m.groups
}

func (m *XLinkManager) rebuild() {
	groups := map[string][]int{}
	for idx, id := range m.LinkIDs {
		groups[id] = append(groups[id], idx)
	}
	for id := range groups {
		sort.Ints(groups[id])
	}
	m.groups = groups
}
