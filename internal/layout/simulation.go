package layout

import (
	"context"
	"math"
	"math/rand"
	"time"

	"datarepublican/charitygraph/internal/graph"
)

// SimulationName is the configuration name of the force strategy.
const SimulationName = "simulation"

// SimulationConfig tunes the force relaxation. The alpha schedule follows the
// common velocity Verlet formulation: alpha moves toward AlphaTarget by
// AlphaDecay each tick and the run settles once alpha drops below AlphaMin.
type SimulationConfig struct {
	LinkDistance    float64       `yaml:"linkDistance" validate:"gt=0"`
	Charge          float64       `yaml:"charge" validate:"lte=0"`
	ChargeMinDist   float64       `yaml:"chargeMinDistance" validate:"gte=0"`
	ChargeMaxDist   float64       `yaml:"chargeMaxDistance" validate:"gte=0"` // 0 means unbounded
	CenterStrength  float64       `yaml:"centerStrength" validate:"gte=0,lte=1"`
	AxisStrength    float64       `yaml:"axisStrength" validate:"gte=0,lte=1"`
	AlphaMin        float64       `yaml:"alphaMin" validate:"gt=0,lt=1"`
	AlphaDecay      float64       `yaml:"alphaDecay" validate:"gt=0,lt=1"`
	VelocityDecay   float64       `yaml:"velocityDecay" validate:"gte=0,lte=1"`
	DragAlphaTarget float64       `yaml:"dragAlphaTarget" validate:"gte=0,lte=1"`
	MaxIterations   int           `yaml:"maxIterations" validate:"gte=1"`
	MaxDuration     time.Duration `yaml:"maxDuration" validate:"gte=0"`
	Seed            int64         `yaml:"seed"` // 0 seeds from the clock
}

// DefaultSimulationConfig returns settings sized for 260x150 node cards.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		LinkDistance:    320,
		Charge:          -4000,
		ChargeMinDist:   1,
		CenterStrength:  1,
		AxisStrength:    0.05,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:   0.4,
		DragAlphaTarget: 0.3,
		MaxIterations:   1000,
		MaxDuration:     2 * time.Second,
	}
}

// Simulation is the physics strategy. It is not reproducible across seeds:
// coincident nodes are separated by a random nudge.
type Simulation struct {
	cfg SimulationConfig
}

// NewSimulation creates a force strategy.
func NewSimulation(cfg SimulationConfig) *Simulation {
	return &Simulation{cfg: cfg}
}

func (s *Simulation) Name() string { return SimulationName }

// Config returns the settings in use.
func (s *Simulation) Config() SimulationConfig { return s.cfg }

// ComputePositions relaxes the layout until alpha decays, MaxIterations is
// reached or MaxDuration elapses, whichever comes first. The last positions
// are returned in every case except cancellation.
func (s *Simulation) ComputePositions(ctx context.Context, nodes []graph.Node, edges []graph.Edge, width, height float64) (Positions, error) {
	return computeWith(ctx, s, s.cfg.MaxDuration, nodes, edges, width, height)
}

// Start seeds unplaced bodies on a phyllotaxis spiral around the viewport
// center and returns the live run.
func (s *Simulation) Start(arena *Arena, edges []graph.Edge, vp Viewport) Run {
	vp = vp.OrDefault()
	center := vp.Center()
	initialAngle := math.Pi * (3 - math.Sqrt(5))
	for i, b := range arena.Bodies() {
		if b.placed {
			continue
		}
		radius := 10 * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		b.X = center.X + radius*math.Cos(angle)
		b.Y = center.Y + radius*math.Sin(angle)
		b.placed = true
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &simRun{
		cfg:    s.cfg,
		arena:  arena,
		center: center,
		alpha:  1,
		rand:   rand.New(rand.NewSource(seed)),
	}
	r.bindLinks(edges)
	return r
}

type link struct {
	source, target *Body
	strength, bias float64
}

type simRun struct {
	cfg         SimulationConfig
	arena       *Arena
	links       []link
	center      Point
	alpha       float64
	alphaTarget float64
	iterations  int
	rand        *rand.Rand
}

// bindLinks resolves edge endpoints to bodies and precomputes per-link
// strength (1/min degree) and bias (share of movement given to the target).
// Self-loops exert no force and are skipped.
func (r *simRun) bindLinks(edges []graph.Edge) {
	count := make(map[string]int)
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		count[e.Source]++
		count[e.Target]++
	}
	for _, e := range edges {
		src, dst := r.arena.Body(e.Source), r.arena.Body(e.Target)
		if src == nil || dst == nil || src == dst {
			continue
		}
		cs, ct := float64(count[e.Source]), float64(count[e.Target])
		r.links = append(r.links, link{
			source:   src,
			target:   dst,
			strength: 1 / math.Min(cs, ct),
			bias:     cs / (cs + ct),
		})
	}
}

func (r *simRun) ReleasesPins() bool { return true }

func (r *simRun) SetAlphaTarget(target float64) {
	r.alphaTarget = target
	r.iterations = 0
}

// Alpha is the current energy of the run.
func (r *simRun) Alpha() float64 { return r.alpha }

func (r *simRun) Tick() bool {
	if r.iterations >= r.cfg.MaxIterations {
		return false
	}
	r.iterations++
	r.alpha += (r.alphaTarget - r.alpha) * r.cfg.AlphaDecay

	r.applyLinks()
	r.applyCharge()
	r.applyAxis()

	keep := 1 - r.cfg.VelocityDecay
	for _, b := range r.arena.Bodies() {
		if b.Pin != nil {
			b.X, b.Y = b.Pin.X, b.Pin.Y
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= keep
		b.VY *= keep
		b.X += b.VX
		b.Y += b.VY
	}
	r.applyCenter()

	return r.alpha >= r.cfg.AlphaMin && r.iterations < r.cfg.MaxIterations
}

func (r *simRun) jiggle() float64 {
	return (r.rand.Float64() - 0.5) * 1e-6
}

func (r *simRun) applyLinks() {
	for _, l := range r.links {
		x := l.target.X + l.target.VX - l.source.X - l.source.VX
		y := l.target.Y + l.target.VY - l.source.Y - l.source.VY
		if x == 0 {
			x = r.jiggle()
		}
		if y == 0 {
			y = r.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - r.cfg.LinkDistance) / d * r.alpha * l.strength
		x *= k
		y *= k
		l.target.VX -= x * l.bias
		l.target.VY -= y * l.bias
		l.source.VX += x * (1 - l.bias)
		l.source.VY += y * (1 - l.bias)
	}
}

// applyCharge is the exact all-pairs form of many-body repulsion. Graphs
// here hold dozens of nodes, so no spatial index is used.
func (r *simRun) applyCharge() {
	if r.cfg.Charge == 0 {
		return
	}
	bodies := r.arena.Bodies()
	minDist2 := r.cfg.ChargeMinDist * r.cfg.ChargeMinDist
	maxDist2 := math.Inf(1)
	if r.cfg.ChargeMaxDist > 0 {
		maxDist2 = r.cfg.ChargeMaxDist * r.cfg.ChargeMaxDist
	}
	w := r.cfg.Charge * r.alpha
	for i, a := range bodies {
		for j, b := range bodies {
			if i == j {
				continue
			}
			x := b.X - a.X
			y := b.Y - a.Y
			l := x*x + y*y
			if l >= maxDist2 {
				continue
			}
			if x == 0 {
				x = r.jiggle()
				l += x * x
			}
			if y == 0 {
				y = r.jiggle()
				l += y * y
			}
			if l < minDist2 {
				l = math.Sqrt(minDist2 * l)
			}
			a.VX += x * w / l
			a.VY += y * w / l
		}
	}
}

func (r *simRun) applyAxis() {
	s := r.cfg.AxisStrength * r.alpha
	if s == 0 {
		return
	}
	for _, b := range r.arena.Bodies() {
		b.VX += (r.center.X - b.X) * s
		b.VY += (r.center.Y - b.Y) * s
	}
}

// applyCenter translates free bodies so their mean sits on the viewport
// center. Pinned bodies are not moved.
func (r *simRun) applyCenter() {
	if r.cfg.CenterStrength == 0 {
		return
	}
	var sx, sy float64
	var n int
	for _, b := range r.arena.Bodies() {
		if b.Pin != nil {
			continue
		}
		sx += b.X
		sy += b.Y
		n++
	}
	if n == 0 {
		return
	}
	dx := (sx/float64(n) - r.center.X) * r.cfg.CenterStrength
	dy := (sy/float64(n) - r.center.Y) * r.cfg.CenterStrength
	for _, b := range r.arena.Bodies() {
		if b.Pin != nil {
			continue
		}
		b.X -= dx
		b.Y -= dy
	}
}
