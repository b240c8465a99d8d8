// Package metrics is a lightweight Prometheus-compatible registry built on
// the standard library. Counters and histograms only; label pairs are baked
// into the metric name so each label combination is a distinct series.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuckets are latency buckets in seconds.
var DefaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Counter is a monotonically increasing counter.
type Counter struct{ val atomic.Int64 }

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

// Histogram tracks a distribution over fixed buckets.
type Histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sum += v
	h.count++
	for i, b := range h.buckets {
		if v <= b {
			h.counts[i]++
			break
		}
	}
}

// Since observes the seconds elapsed since t.
func (h *Histogram) Since(t time.Time) { h.Observe(time.Since(t).Seconds()) }

// Registry holds named metrics.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	histograms map[string]*Histogram
	help       map[string]string
	order      []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
		help:       make(map[string]string),
	}
}

// Counter returns (or creates) the named counter.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{}
	r.counters[name] = c
	r.register(baseName(name), help)
	return c
}

// Histogram returns (or creates) the named histogram.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DefaultBuckets
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	b := make([]float64, len(buckets))
	copy(b, buckets)
	sort.Float64s(b)
	h := &Histogram{buckets: b, counts: make([]uint64, len(b))}
	r.histograms[name] = h
	r.register(baseName(name), help)
	return h
}

func (r *Registry) register(base, help string) {
	if _, ok := r.help[base]; !ok {
		r.order = append(r.order, base)
	}
	if help != "" {
		r.help[base] = help
	}
}

// WithLabels bakes label pairs into a metric name: WithLabels("x", "k", "v")
// yields `x{k="v"}`.
func WithLabels(name string, kvs ...string) string {
	if len(kvs) == 0 || len(kvs)%2 != 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i := 0; i < len(kvs); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", kvs[i], kvs[i+1])
	}
	b.WriteByte('}')
	return b.String()
}

func baseName(name string) string {
	if i := strings.IndexByte(name, '{'); i != -1 {
		return name[:i]
	}
	return name
}

func seriesLabels(name string) string {
	i := strings.IndexByte(name, '{')
	if i == -1 {
		return ""
	}
	return strings.TrimSuffix(name[i+1:], "}")
}

// histSeries renders a histogram series name, merging labels baked into the
// metric name with the extra label (the le bound; empty for _sum and _count).
func histSeries(base, suffix, labels, extra string) string {
	switch {
	case labels == "" && extra == "":
		return base + suffix
	case labels == "":
		return base + suffix + "{" + extra + "}"
	case extra == "":
		return base + suffix + "{" + labels + "}"
	default:
		return base + suffix + "{" + labels + "," + extra + "}"
	}
}

// Render returns the Prometheus text exposition format.
func (r *Registry) Render() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, base := range r.order {
		if h, ok := r.help[base]; ok && h != "" {
			fmt.Fprintf(&b, "# HELP %s %s\n", base, h)
		}
		names := r.seriesFor(base)
		for _, n := range names {
			if c, ok := r.counters[n]; ok {
				fmt.Fprintf(&b, "%s %d\n", n, c.Value())
				continue
			}
			h := r.histograms[n]
			labels := seriesLabels(n)
			h.mu.Lock()
			cumulative := uint64(0)
			for i, bk := range h.buckets {
				cumulative += h.counts[i]
				fmt.Fprintf(&b, "%s %d\n", histSeries(base, "_bucket", labels, fmt.Sprintf("le=%q", fmt.Sprintf("%g", bk))), cumulative)
			}
			fmt.Fprintf(&b, "%s %d\n", histSeries(base, "_bucket", labels, `le="+Inf"`), h.count)
			fmt.Fprintf(&b, "%s %g\n", histSeries(base, "_sum", labels, ""), h.sum)
			fmt.Fprintf(&b, "%s %d\n", histSeries(base, "_count", labels, ""), h.count)
			h.mu.Unlock()
		}
	}
	return b.String()
}

func (r *Registry) seriesFor(base string) []string {
	var out []string
	for n := range r.counters {
		if baseName(n) == base {
			out = append(out, n)
		}
	}
	for n := range r.histograms {
		if baseName(n) == base {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Handler serves the registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(r.Render()))
	})
}
