package session

import (
	"testing"
)

func TestXLink_GroupMembership(t *testing.T) {
	m := NewXLinkManager()
	id := m.CreateGroup([]int{2, 0}, "")
	if id == "" {
		t.Fatalf("expected a generated link id")
	}
	if got := m.Members(id); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("members = %v want [0 2]", got)
	}

	m.RemoveFromGroup(0)
	if got := m.Members(id); len(got) != 1 || got[0] != 2 {
		t.Fatalf("members after removal = %v want [2]", got)
	}
	if _, ok := m.LinkID(0); ok {
		t.Fatalf("axis 0 still reports a link id after removal")
	}
}

func TestXLink_ExplicitIDReused(t *testing.T) {
	m := NewXLinkManager()
	if got := m.CreateGroup([]int{1}, "grp-a"); got != "grp-a" {
		t.Fatalf("explicit id not honored: %q", got)
	}
	m.CreateGroup([]int{3}, "grp-a")
	if got := m.Members("grp-a"); len(got) != 2 {
		t.Fatalf("joining an existing id must merge groups, got %v", got)
	}
}

func TestXLink_BroadcastConvergesInOnePass(t *testing.T) {
	s := NewSession(nil)
	p1 := s.CurrentPage()
	p2 := s.AddPage(2, 1)

	id := p1.CreateXLinkGroup([]int{0}, "")
	p2.Links.CreateGroup([]int{0, 1}, id)

	s.BroadcastXRange(id, 10, 20)

	for i, pg := range []*Page{p1, p2} {
		for _, idx := range pg.Links.Members(id) {
			ax := pg.Axes[idx]
			if ax.XMin == nil || ax.XMax == nil || *ax.XMin != 10 || *ax.XMax != 20 {
				t.Fatalf("page %d axis %d did not receive the range", i+1, idx)
			}
		}
	}
}

func TestXLink_UserDragFansOutAcrossPages(t *testing.T) {
	s := NewSession(nil)
	p1 := s.CurrentPage()
	p2 := s.AddPage(1, 1)

	id := p1.CreateXLinkGroup([]int{0}, "")
	p2.Links.CreateGroup([]int{0}, id)

	// A plain range change on a linked axis reaches the other page.
	p1.SetXRange(0, -5, 5)
	ax := p2.Axes[0]
	if ax.XMin == nil || *ax.XMin != -5 || ax.XMax == nil || *ax.XMax != 5 {
		t.Fatalf("page 2 axis 0 range = (%v, %v), want (-5, 5)", ax.XMin, ax.XMax)
	}
}

func TestXLink_UnlinkedAxisDoesNotBroadcast(t *testing.T) {
	s := NewSession(nil)
	p1 := s.CurrentPage()
	p2 := s.AddPage(1, 1)

	id := p2.Links.CreateGroup([]int{0}, "")
	p1.SetXRange(0, 1, 2)

	ax := p2.Axes[0]
	if ax.XMin != nil || ax.XMax != nil {
		t.Fatalf("unlinked change leaked into link group %s: (%v, %v)", id, ax.XMin, ax.XMax)
	}
}

func TestXLink_ApplySkipsAlreadyCloseRanges(t *testing.T) {
	p := NewPage(1, 2)
	id := p.Links.CreateGroup([]int{0, 1}, "")

	var notified int
	p.SetRangeListener(func(string, float64, float64) { notified++ })

	p.ApplyLinkedXRange(id, 0, 100)
	if notified != 0 {
		t.Fatalf("applying a broadcast must not re-notify, got %d notifications", notified)
	}

	// A second identical broadcast changes nothing.
	first := *p.Axes[0].XMin
	p.ApplyLinkedXRange(id, 0, 100+1e-9)
	if *p.Axes[0].XMin != first {
		t.Fatalf("numerically close range was re-applied")
	}
}

func TestXLink_CreateGroupBroadcastsBaseline(t *testing.T) {
	p := NewPage(1, 2)
	p.Axes[0].XMin, p.Axes[0].XMax = Float(3), Float(9)

	var gotID string
	var gotMin, gotMax float64
	p.SetRangeListener(func(id string, xmin, xmax float64) {
		gotID, gotMin, gotMax = id, xmin, xmax
	})

	id := p.CreateXLinkGroup([]int{0, 1}, "")
	if gotID != id || gotMin != 3 || gotMax != 9 {
		t.Fatalf("baseline broadcast = (%q, %v, %v), want (%q, 3, 9)", gotID, gotMin, gotMax, id)
	}
}
