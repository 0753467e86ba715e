package session

// guard is a scoped reentrancy suppressor. Do runs fn with the guard held and
// releases it on every exit path; a nested Do while held is a no-op.
type guard struct {
	active bool
}

func (g *guard) Active() bool { return g.active }

func (g *guard) Do(fn func()) {
	if g.active {
		return
	}
	g.active = true
	defer func() { g.active = false }()
	fn()
}
