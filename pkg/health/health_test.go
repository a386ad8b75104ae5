package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRunAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{
			name:   "all up",
			checks: map[string]Check{"corpus": CorpusCheck(func() int { return 3 })},
			want:   StatusUp,
		},
		{
			name: "optional dependency down degrades",
			checks: map[string]Check{
				"corpus": CorpusCheck(func() int { return 3 }),
				"redis":  PingCheck(pingFunc(func(context.Context) error { return errors.New("refused") }), true),
			},
			want: StatusDegraded,
		},
		{
			name: "required dependency down",
			checks: map[string]Check{
				"postgres": PingCheck(pingFunc(func(context.Context) error { return errors.New("refused") }), false),
				"redis":    PingCheck(pingFunc(func(context.Context) error { return errors.New("refused") }), true),
			},
			want: StatusDown,
		},
		{
			name:   "empty corpus",
			checks: map[string]Check{"corpus": CorpusCheck(func() int { return 0 })},
			want:   StatusDown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("status = %s, want %s (%+v)", report.Status, tt.want, report.Components)
			}
			if len(report.Components) != len(tt.checks) {
				t.Errorf("components = %d, want %d", len(report.Components), len(tt.checks))
			}
		})
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("corpus", CorpusCheck(func() int { return 0 }))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Components["corpus"].Message != "no documents loaded" {
		t.Errorf("message = %q", report.Components["corpus"].Message)
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestReadyHandlerDegradedStaysReady(t *testing.T) {
	c := NewChecker()
	c.Register("corpus", CorpusCheck(func() int { return 2 }))
	c.Register("redis", PingCheck(pingFunc(func(context.Context) error { return errors.New("refused") }), true))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != StatusDegraded {
		t.Errorf("report status = %s, want degraded", report.Status)
	}
}

func TestRunBoundsSlowCheck(t *testing.T) {
	c := NewChecker()
	c.timeout = 20 * time.Millisecond
	c.Register("redis", PingCheck(pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), false))

	start := time.Now()
	report := c.Run(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run took %v, want bounded by the check timeout", elapsed)
	}
	if report.Status != StatusDown {
		t.Errorf("status = %s, want down", report.Status)
	}
}

func TestRunRecoversPanickingCheck(t *testing.T) {
	c := NewChecker()
	c.Register("broken", func(context.Context) ComponentHealth { panic("nil client") })
	report := c.Run(context.Background())
	comp := report.Components["broken"]
	if comp.Status != StatusDown || comp.Latency == "" {
		t.Errorf("component = %+v, want down with latency", comp)
	}
}
