// Package timing records named phase intervals within one request and emits a
// percentage-of-total breakdown for latency attribution
package timing

import "time"

// Phase is one named interval in the timeline
type Phase struct {
	Name       string  `json:"name"`
	StartMs    float64 `json:"start_ms"`
	EndMs      float64 `json:"end_ms"`
	DurationMs float64 `json:"duration_ms"`
	Percent    float64 `json:"percent"`

	// Skipped marks phases under the minimum duration; they stay in the
	// timeline so consumers see the full phase inventory
	Skipped bool `json:"skipped,omitempty"`
}

// Report is the finished timeline plus summary
type Report struct {
	TotalMs float64 `json:"total_ms"`
	Phases  []Phase `json:"phases"`
}

type interval struct {
	name  string
	start time.Time
	end   time.Time
}

// Recorder tracks phases for a single request. Not safe for concurrent use;
// one recorder per request
type Recorder struct {
	t0       time.Time
	minPhase time.Duration
	phases   []interval
	open     bool

	clock func() time.Time // seam for tests
}

// New returns a Recorder; phases shorter than minPhase are flagged skipped
func New(minPhase time.Duration) *Recorder {
	r := &Recorder{minPhase: minPhase, clock: time.Now}
	r.t0 = r.clock()
	return r
}

// StartPhase opens a named phase, implicitly ending any open phase
func (r *Recorder) StartPhase(name string) {
	now := r.clock()
	if r.open {
		r.phases[len(r.phases)-1].end = now
	}
	r.phases = append(r.phases, interval{name: name, start: now})
	r.open = true
}

// Finish closes the last open phase and computes the breakdown
func (r *Recorder) Finish() Report {
	now := r.clock()
	if r.open {
		r.phases[len(r.phases)-1].end = now
		r.open = false
	}

	total := now.Sub(r.t0)
	rep := Report{TotalMs: ms(total), Phases: make([]Phase, 0, len(r.phases))}
	for _, p := range r.phases {
		d := p.end.Sub(p.start)
		pct := 0.0
		if total > 0 {
			pct = float64(d) / float64(total) * 100
		}
		rep.Phases = append(rep.Phases, Phase{
			Name:       p.name,
			StartMs:    ms(p.start.Sub(r.t0)),
			EndMs:      ms(p.end.Sub(r.t0)),
			DurationMs: ms(d),
			Percent:    pct,
			Skipped:    d < r.minPhase,
		})
	}
	return rep
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
