package engine

import (
	"github.com/vovakirdan/tui-platformer/internal/core"
)

// flatImage is a one-unit image with no visible cells.
type flatImage struct{}

func (flatImage) Size() (float64, float64)   { return 1, 1 }
func (flatImage) At(x, y float64) core.Cell { return core.Cell{} }

var stubSprite = core.Sprite{Tileset: flatImage{}, Src: core.NewBox(0, 0, 1, 1)}

// stub is a test object that records what the engine hands it.
type stub struct {
	Object
	name     string
	trace    *[]string
	received []GameEvent

	onResolveEvents func(p *stub)
}

func newStub(name string, body PhysicalObject) *stub {
	return &stub{
		Object: NewObject(0, body, stubSprite),
		name:   name,
	}
}

func box(x0, y0, w, h float64) PhysicalObject {
	return PhysicalObject{X0: x0, Y0: y0, W: w, H: h}
}

func (p *stub) record(hook string) {
	if p.trace != nil {
		*p.trace = append(*p.trace, p.name+"."+hook)
	}
}

func (p *stub) BeforeUpdate() { p.record("before") }

func (p *stub) OnResolveEvents() {
	p.record("events")
	p.received = append(p.received, p.Events()...)
	if p.onResolveEvents != nil {
		p.onResolveEvents(p)
	}
}

func (p *stub) OnDetectCollisions()  { p.record("detect") }
func (p *stub) OnApplyForces()       { p.record("forces") }
func (p *stub) OnResolveCollisions() { p.record("resolve") }
func (p *stub) OnRender()            { p.record("render") }
func (p *stub) AfterUpdate()         { p.record("after") }

// recordTarget collects draw destinations and fails with err when set.
type recordTarget struct {
	draws []core.Box
	err   error
}

func (r *recordTarget) DrawImage(img core.Image, src, dst core.Box) error {
	if r.err != nil {
		return r.err
	}
	r.draws = append(r.draws, dst)
	return nil
}

func objects(ps ...*stub) []GameObject {
	out := make([]GameObject, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

func newTestEngine(target RenderTarget, ps ...*stub) (*Engine, *ManualScheduler) {
	sched := &ManualScheduler{}
	e, err := New(target, Background{}, objects(ps...), WithScheduler(sched))
	if err != nil {
		panic(err)
	}
	return e, sched
}
