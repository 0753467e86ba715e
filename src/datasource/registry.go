package datasource

import "sort"

// Entry pairs a loaded dataset with the path it was imported from.
type Entry struct {
	Dataset      *Dataset
	OriginalPath string
}

// Registry maps short file names to loaded datasets. It is owned by the
// caller and passed into the session explicitly; there is no package-level
// instance.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// Add registers (or replaces) a dataset under name.
func (r *Registry) Add(name string, ds *Dataset, originalPath string) {
	if _, ok := r.entries[name]; !ok {
		r.order = append(r.order, name)
	}
	r.entries[name] = &Entry{Dataset: ds, OriginalPath: originalPath}
}

func (r *Registry) Get(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Dataset is a convenience accessor returning just the dataset.
func (r *Registry) Dataset(name string) (*Dataset, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.Dataset, true
}

func (r *Registry) Remove(name string) {
	if _, ok := r.entries[name]; !ok {
		return
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Names returns registered file names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int { return len(r.entries) }

// AvailableVariables returns the union of column names across all registered
// datasets, sorted for stable display.
func (r *Registry) AvailableVariables() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range r.order {
		for _, v := range r.entries[name].Dataset.Vars() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}
