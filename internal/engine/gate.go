package engine

// Gate is the pause gate awaited once at the top of every tick.
//
// It holds at most one suspended continuation: ticks are never scheduled
// concurrently, so only one can be waiting at a time.
type Gate struct {
	open   bool
	waiter func()
}

// Await runs cont immediately when the gate is open. Otherwise cont is stored
// and runs on the next Resume.
func (g *Gate) Await(cont func()) {
	if g.open {
		cont()
		return
	}
	g.waiter = cont
}

// Pause closes the gate. Pausing a closed gate is a no-op.
func (g *Gate) Pause() {
	g.open = false
}

// Resume opens the gate and releases the suspended continuation, if any.
// The gate is committed open before the continuation runs, so a Pause issued
// from inside it sticks. Resuming an open gate is a no-op.
func (g *Gate) Resume() {
	g.open = true
	cont := g.waiter
	g.waiter = nil
	if cont != nil {
		cont()
	}
}

// Open reports whether awaits currently pass straight through.
func (g *Gate) Open() bool {
	return g.open
}

// Waiting reports whether a continuation is suspended on the gate.
func (g *Gate) Waiting() bool {
	return g.waiter != nil
}
