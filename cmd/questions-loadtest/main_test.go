package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/answer" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("q") == "unknown" {
			w.Write([]byte(`{"sentences":[]}`))
			return
		}
		w.Write([]byte(`{"sentences":[{"sentence":"Cats sleep a lot."}]}`))
	}))
	defer srv.Close()

	status, answered, err := ask(context.Background(), srv.Client(), srv.URL, "Do cats sleep?")
	if err != nil || status != http.StatusOK || !answered {
		t.Errorf("ask = %d %v %v", status, answered, err)
	}
	_, answered, _ = ask(context.Background(), srv.Client(), srv.URL, "unknown")
	if answered {
		t.Error("empty sentences must not count as answered")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{50, 5},
		{90, 9},
		{99, 10},
		{0, 1},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPrintReport(t *testing.T) {
	stats := NewStats()
	stats.RecordRequest(10*time.Millisecond, 200, true, nil)
	stats.RecordRequest(20*time.Millisecond, 429, false, nil)

	var buf bytes.Buffer
	if !printReport(&buf, stats, time.Second) {
		t.Fatal("report should succeed")
	}
	out := buf.String()
	for _, want := range []string{"Total Requests:  2", "Answered:        1", "429: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if printReport(&bytes.Buffer{}, NewStats(), time.Second) {
		t.Error("empty run should report failure")
	}
}

func TestLoadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.txt")
	if err := os.WriteFile(path, []byte("Who created Python?\n\n  Do cats sleep?  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := loadQuestions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != "Do cats sleep?" {
		t.Errorf("questions = %q", got)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	os.WriteFile(empty, nil, 0o644)
	if _, err := loadQuestions(empty); err == nil {
		t.Error("expected error for empty file")
	}
}
