package demo

import (
	"math/rand/v2"
	"time"

	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

// Renderer stands in for a graphical front end: every few frames it logs what
// a screen would show.
type Renderer struct {
	ecs.BaseSystem
	every  uint64
	frames uint64
	last   Frame
}

// Frame is what the renderer drew last.
type Frame struct {
	Sprites int
	Labels  []string
	Ships   map[int32]ShipView
}

type ShipView struct {
	X, Y   int32
	Health int32
	Score  int32
}

func NewRenderer(every uint64) *Renderer {
	return &Renderer{BaseSystem: ecs.BaseSystem{SystemName: ecs.RendererName}, every: max(every, 1)}
}

// Last returns the most recent frame.
func (r *Renderer) Last() Frame { return r.last }

func (r *Renderer) Tick(w *ecs.World) {
	r.frames++
	if r.frames%r.every != 0 {
		return
	}
	r.last = Capture(w)
	w.Logger().Debug("Frame rendered",
		log.Uint64("frame", w.Frame()),
		log.Int("sprites", r.last.Sprites),
		log.Strings("labels", r.last.Labels),
		log.Int("ships", len(r.last.Ships)))
}

// Capture reads the drawable state of w.
func Capture(w *ecs.World) Frame {
	f := Frame{Ships: make(map[int32]ShipView)}
	ecs.Each1(w, func(_ *ecs.Entity, r *components.Renderable) {
		if r.Displayed {
			f.Sprites++
		}
	})
	ecs.Each1(w, func(_ *ecs.Entity, t *components.Text) {
		f.Labels = append(f.Labels, t.Content)
	})
	ecs.Each2(w, func(e *ecs.Entity, p *components.Player, pos *components.Position) {
		view := ShipView{X: pos.X, Y: pos.Y}
		if h, err := ecs.Get[*components.Health](e); err == nil {
			view.Health = h.Value
		}
		if s, err := ecs.Get[*components.Score](e); err == nil {
			view.Score = s.Value
		}
		f.Ships[p.Slot] = view
	})
	return f
}

var arrows = [...]int32{KeyLeft, KeyRight, KeyUp, KeyDown}

// Autopilot presses a random arrow key at a fixed pace on behalf of the local
// player.
type Autopilot struct {
	ecs.BaseSystem
	sink     InputSink
	interval time.Duration
	clock    func() time.Time
	rng      *rand.Rand
	next     time.Time
	sent     int
}

func NewAutopilot(sink InputSink, interval time.Duration, clock func() time.Time, seed uint64) *Autopilot {
	return &Autopilot{
		BaseSystem: ecs.BaseSystem{SystemName: "Autopilot", SystemPhase: ecs.PhasePreUpdate},
		sink:       sink,
		interval:   interval,
		clock:      clock,
		rng:        rand.New(rand.NewPCG(seed, uint64(time.Now().UnixNano()))),
	}
}

// Sent returns the number of accepted key presses.
func (a *Autopilot) Sent() int { return a.sent }

func (a *Autopilot) Tick(w *ecs.World) {
	if p := w.Players(); p.Current() != p.Own() {
		return
	}
	now := a.clock()
	if now.Before(a.next) {
		return
	}
	a.next = now.Add(a.interval)
	if a.sink.AddEvent(protocol.KeyPressed(arrows[a.rng.IntN(len(arrows))], protocol.Modifiers{})) {
		a.sent++
	}
}
