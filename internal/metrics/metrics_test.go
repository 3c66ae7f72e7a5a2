package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/lbsim/internal/event"
	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

func newCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, reg
}

func TestCollector_HandleEvents(t *testing.T) {
	c, reg := newCollector(t)
	bus := event.NewBus(nil)
	c.Attach(bus)

	em := event.NewEmitter(bus)
	proc := request.New("1.1.1.1", "2.2.2.2", 7, request.JobProcessing)
	stream := request.New("1.1.1.2", "2.2.2.2", 12, request.JobStreaming)

	em.WorkerAdded(0, 1)
	em.WorkerAdded(0, 2)
	em.RequestStarted(1, 1, proc)
	em.RequestStarted(1, 2, stream)
	em.RequestCompleted(8, 1, proc)
	em.RequestBlocked(9, proc)
	em.WorkerRemoved(10, 1)
	em.Status(10, 4, 1)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"started processing", testutil.ToFloat64(c.RequestsStarted.WithLabelValues("processing")), 1},
		{"started streaming", testutil.ToFloat64(c.RequestsStarted.WithLabelValues("streaming")), 1},
		{"completed", testutil.ToFloat64(c.RequestsCompleted), 1},
		{"blocked", testutil.ToFloat64(c.RequestsBlocked), 1},
		{"workers added", testutil.ToFloat64(c.WorkersAdded), 2},
		{"workers removed", testutil.ToFloat64(c.WorkersRemoved), 1},
		{"queue depth", testutil.ToFloat64(c.QueueDepth), 4},
		{"pool size", testutil.ToFloat64(c.PoolSize), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := histogramSampleCount(t, reg, "lbsim_request_duration_cycles"); n != 1 {
		t.Errorf("histogram sample count = %d, want 1", n)
	}
}

func TestCollector_SummarySetsFinalGauges(t *testing.T) {
	c, _ := newCollector(t)
	c.Handle(event.NewStatusEvent(5, 30, 3))
	c.Handle(event.NewSummaryEvent(sim.Summary{Cycles: 100, FinalWorkers: 2, FinalQueue: 17}))

	if got := testutil.ToFloat64(c.QueueDepth); got != 17 {
		t.Errorf("queue depth = %v, want 17", got)
	}
	if got := testutil.ToFloat64(c.PoolSize); got != 2 {
		t.Errorf("pool size = %v, want 2", got)
	}
}

func TestCollector_Detach(t *testing.T) {
	c, _ := newCollector(t)
	bus := event.NewBus(nil)
	c.Attach(bus)
	if bus.SubscriptionCount() != 1 {
		t.Fatalf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}

	c.Detach()
	if bus.SubscriptionCount() != 0 {
		t.Fatalf("SubscriptionCount() after Detach = %d, want 0", bus.SubscriptionCount())
	}
	bus.Publish(event.NewWorkerAddedEvent(0, 1))
	if got := testutil.ToFloat64(c.WorkersAdded); got != 0 {
		t.Errorf("workers added after Detach = %v, want 0", got)
	}
}

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}

	first.RequestsBlocked.Inc()
	if got := testutil.ToFloat64(second.RequestsBlocked); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(second.RequestsBlocked); n != 1 {
		t.Errorf("CollectAndCount = %d, want 1", n)
	}
}

func TestNew_NilRegistry(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if c.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
}

func TestCollector_WriteFile(t *testing.T) {
	c, _ := newCollector(t)
	c.Handle(event.NewRequestBlockedEvent(3, request.New("9.9.9.9", "1.1.1.1", 5, request.JobProcessing)))

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/out", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteFile(fs, "/out/metrics.prom"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := afero.ReadFile(fs, "/out/metrics.prom")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		"lbsim_requests_blocked_total 1",
		"lbsim_workers_added_total 0",
		"# TYPE lbsim_request_duration_cycles histogram",
		"lbsim_pool_size 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics file missing %q:\n%s", want, body)
		}
	}

	entries, err := afero.ReadDir(fs, "/out")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "metrics.prom" {
		t.Errorf("leftover files in /out: %v", entries)
	}
}

func TestCollector_WriteFileBadPath(t *testing.T) {
	c, _ := newCollector(t)
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := c.WriteFile(fs, "metrics.prom"); err == nil {
		t.Fatal("WriteFile on a read-only filesystem should fail")
	}
}

func TestCollector_FollowsSimulation(t *testing.T) {
	c, _ := newCollector(t)
	bus := event.NewBus(nil)
	c.Attach(bus)

	cfg := sim.DefaultConfig()
	cfg.InitialWorkers = 3
	cfg.TotalCycles = 200
	cfg.Seed = 7

	s, err := sim.New(cfg, sim.WithReporter(event.NewEmitter(bus)))
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	added := testutil.ToFloat64(c.WorkersAdded)
	removed := testutil.ToFloat64(c.WorkersRemoved)
	if int(added-removed) != s.PoolSize() {
		t.Errorf("added-removed = %v, pool size = %d", added-removed, s.PoolSize())
	}
	if got := testutil.ToFloat64(c.PoolSize); int(got) != s.PoolSize() {
		t.Errorf("pool gauge = %v, want %d", got, s.PoolSize())
	}
	if got := testutil.ToFloat64(c.QueueDepth); int(got) != s.QueueLen() {
		t.Errorf("queue gauge = %v, want %d", got, s.QueueLen())
	}
	if testutil.ToFloat64(c.RequestsCompleted) == 0 {
		t.Error("expected some completed requests")
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			var h *dto.Histogram = m.GetHistogram()
			if h != nil {
				return h.GetSampleCount()
			}
		}
	}
	return 0
}
