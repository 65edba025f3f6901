package statsd

import (
	"maps"
	"sync"
	"time"
)

// Sample is one metric captured by Recorder.
type Sample struct {
	Kind  string
	Name  string
	Value float64
	Tags  map[string]string
}

// Recorder is an in-memory Sink for tests and dry runs.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(Sample{Kind: "c", Name: name, Value: float64(value), Tags: maps.Clone(tags)})
}

func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(Sample{Kind: "g", Name: name, Value: value, Tags: maps.Clone(tags)})
}

func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(Sample{Kind: "ms", Name: name, Value: float64(value) / float64(time.Millisecond), Tags: maps.Clone(tags)})
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// Named returns the samples recorded under name.
func (r *Recorder) Named(name string) []Sample {
	var out []Sample
	for _, s := range r.Samples() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func (r *Recorder) add(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}
