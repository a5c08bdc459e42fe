package progress

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// CountToken is the placeholder in milestone labels that is substituted with
// the real question count once the generation response makes it known.
const CountToken = "{count}"

// Milestone is one step of the simulated generation timeline: the percent
// the bar climbs toward, the dwell once that percent is reached, and the
// label shown while climbing.
type Milestone struct {
	Target int
	Delay  time.Duration
	Label  string
}

// DefaultMilestones tops out at 90; the final stretch to 100 belongs to the
// real completion signal, never to the simulation.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Target: 15, Delay: 400 * time.Millisecond, Label: "Reading document..."},
		{Target: 45, Delay: 600 * time.Millisecond, Label: "Analyzing content..."},
		{Target: 75, Delay: 800 * time.Millisecond, Label: "Writing " + CountToken + " questions..."},
		{Target: 90, Delay: 0, Label: "Finalizing quiz..."},
	}
}

// Snapshot is one rendered step of the simulation.
type Snapshot struct {
	Percent int
	Label   string
}

// Simulator steps a percent value through a milestone table, one unit per
// tick. Stepping is pure state (Tick has no clock dependency), so the
// rendered sequence is deterministic for a given table and cadence; Run
// binds it to a cancellable wall-clock ticker.
type Simulator struct {
	milestones []Milestone
	interval   time.Duration

	stage   int
	percent int
	pause   time.Duration // remaining dwell at the current milestone
}

func NewSimulator(milestones []Milestone, interval time.Duration) *Simulator {
	return &Simulator{milestones: milestones, interval: interval}
}

// Tick advances the simulation by one step and returns the value to render.
// Past the final milestone's target the snapshot stops changing.
func (s *Simulator) Tick() Snapshot {
	if s.stage >= len(s.milestones) {
		return s.snapshot()
	}
	m := s.milestones[s.stage]
	switch {
	case s.percent < m.Target:
		s.percent++
	case s.pause < m.Delay:
		s.pause += s.interval
	default:
		s.stage++
		s.pause = 0
	}
	return s.snapshot()
}

func (s *Simulator) snapshot() Snapshot {
	label := ""
	if len(s.milestones) > 0 {
		idx := s.stage
		if idx >= len(s.milestones) {
			idx = len(s.milestones) - 1
		}
		label = s.milestones[idx].Label
	}
	return Snapshot{Percent: s.percent, Label: label}
}

// Run emits a snapshot every interval until ctx is cancelled. The ticker is
// always stopped on the way out; once Run returns no further emit can fire.
func (s *Simulator) Run(ctx context.Context, emit func(Snapshot)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit(s.Tick())
		}
	}
}

// ExpandLabel substitutes the count token. Before the real count is known
// the label reads generically ("Writing new questions..."); afterwards it
// carries the concrete number.
func ExpandLabel(label string, count int) string {
	if !strings.Contains(label, CountToken) {
		return label
	}
	if count > 0 {
		return strings.ReplaceAll(label, CountToken, strconv.Itoa(count))
	}
	return strings.ReplaceAll(label, CountToken, "new")
}
