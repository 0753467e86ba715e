package session

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/splotview/splotview/src/datasource"
)

// State is one whole-session snapshot. Pages are deep copies, raw sample
// arrays included; dataset entries are shared references, safe because
// datasets are replaced wholesale and never mutated in place.
type State struct {
	Pages       []*Page
	FileNames   []string
	FileEntries map[string]*datasource.Entry
	Current     int
}

func clonePages(pages []*Page) ([]*Page, error) {
	var out []*Page
	if err := deepcopy.Copy(&out, pages); err != nil {
		return nil, fmt.Errorf("session: snapshot pages: %w", err)
	}
	return out, nil
}

// captureState snapshots the session.
func (s *Session) captureState() (*State, error) {
	pages, err := clonePages(s.Pages)
	if err != nil {
		return nil, err
	}
	st := &State{
		Pages:       pages,
		FileNames:   s.Files.Names(),
		FileEntries: map[string]*datasource.Entry{},
		Current:     s.Current,
	}
	for _, name := range st.FileNames {
		if e, ok := s.Files.Get(name); ok {
			st.FileEntries[name] = e
		}
	}
	return st, nil
}

// restoreState installs a snapshot onto the session. The snapshot's pages
// are cloned again on the way in so a retained history entry can never be
// aliased by later mutation.
func (s *Session) restoreState(st *State) error {
	pages, err := clonePages(st.Pages)
	if err != nil {
		return err
	}
	s.Pages = pages
	for _, p := range s.Pages {
		s.wirePage(p)
	}

	files := datasource.NewRegistry()
	for _, name := range st.FileNames {
		if e, ok := st.FileEntries[name]; ok {
			files.Add(name, e.Dataset, e.OriginalPath)
		}
	}
	s.Files = files

	s.Current = st.Current
	if s.Current >= len(s.Pages) {
		s.Current = len(s.Pages) - 1
	}
	if s.Current < 0 {
		s.Current = 0
	}
	for _, p := range s.Pages {
		s.redraw(p)
	}
	return nil
}
