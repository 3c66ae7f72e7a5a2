package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/scaling"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		cycle int
		msg   string
		want  string
	}{
		{0, "RUN: Starting simulation", "[Cycle 00000] RUN: Starting simulation"},
		{42, "x", "[Cycle 00042] x"},
		{123456, "y", "[Cycle 123456] y"},
	}
	for _, tt := range tests {
		if got := FormatLine(tt.cycle, tt.msg); got != tt.want {
			t.Errorf("FormatLine(%d) = %q, want %q", tt.cycle, got, tt.want)
		}
	}
}

func TestJournal_Lines(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(&buf)
	r := request.New("10.0.0.1", "10.0.0.2", 7, request.JobStreaming)

	j.WorkerAdded(0, 3)
	j.RequestStarted(1, 3, r)
	j.RequestCompleted(8, 3, r)
	j.RequestBlocked(9, r)
	j.WorkerRemoved(10, 3)
	j.Status(20, 5, 2)
	j.Scaled(21, scaling.Decision{Action: scaling.ActionScaleUp, Delta: 1, Reason: "queue depth 200 exceeds 160"})
	j.Scaled(22, scaling.Decision{Action: scaling.ActionScaleDown, Delta: -1, Reason: "queue depth 1 below 100"})
	j.Scaled(23, scaling.Decision{Action: scaling.ActionNone, Reason: "within thresholds"})
	j.Event(24, "Initialization complete")

	want := []string{
		"[Cycle 00000] ADDED: Worker 3 created",
		"[Cycle 00001] STARTED: Worker 3 took request 10.0.0.1 -> 10.0.0.2 (7 cycles, streaming)",
		"[Cycle 00008] COMPLETE: Worker 3 finished request 10.0.0.1 -> 10.0.0.2 (7 cycles, streaming)",
		"[Cycle 00009] BLOCKED: Request from 10.0.0.1 rejected (IP in blocked range)",
		"[Cycle 00010] REMOVED: Worker 3 deallocated",
		"[Cycle 00020] STATUS: Queue size: 5 | Active workers: 2",
		"[Cycle 00021] SCALE UP: queue depth 200 exceeds 160, adding worker",
		"[Cycle 00022] SCALE DOWN: queue depth 1 below 100, removing worker",
		"[Cycle 00024] Initialization complete",
	}
	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(got), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	st := j.Stats()
	if st.WorkersAdded() != 1 || st.WorkersRemoved() != 1 {
		t.Errorf("worker stats = %d/%d", st.WorkersAdded(), st.WorkersRemoved())
	}
	if st.RequestsStarted() != 1 || st.RequestsProcessed() != 1 || st.RequestsBlocked() != 1 {
		t.Errorf("request stats = %d/%d/%d", st.RequestsStarted(), st.RequestsProcessed(), st.RequestsBlocked())
	}
}

func TestJournal_ConsoleEcho(t *testing.T) {
	var file, console bytes.Buffer
	j := NewJournal(&file, WithConsole(&console), WithColor(false))

	j.Status(4, 1, 1)

	if file.String() != console.String() {
		t.Errorf("uncoloured console should match the file:\nfile=%q\nconsole=%q", file.String(), console.String())
	}
}

func TestJournal_NilFile(t *testing.T) {
	var console bytes.Buffer
	j := NewJournal(nil, WithConsole(&console))

	j.WorkerAdded(0, 1)
	if !strings.Contains(console.String(), "ADDED: Worker 1 created") {
		t.Errorf("console = %q", console.String())
	}
	if j.Err() != nil {
		t.Errorf("Err() = %v", j.Err())
	}
}

func TestJournal_Header(t *testing.T) {
	tests := []struct {
		name    string
		blocked request.Blocklist
		want    string
	}{
		{"no ranges", nil, "Blocked IP Range:            N/A"},
		{"one range", request.Blocklist{request.MustIPRange("10.0.0.0", "10.0.0.255")}, "Blocked IP Range:            10.0.0.0 - 10.0.0.255"},
		{
			"several ranges",
			request.Blocklist{request.MustIPRange("10.0.0.0", "10.0.0.255"), request.MustIPRange("192.168.0.0", "192.168.0.9")},
			"10.0.0.0 - 10.0.0.255 (+1 more)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewJournal(&buf).Header(sim.Header{
				InitialWorkers: 10,
				TotalCycles:    10000,
				MinDuration:    5,
				MaxDuration:    20,
				InitialQueue:   1000,
				Blocked:        tt.blocked,
			})
			out := buf.String()
			for _, s := range []string{
				"SIMULATION CONFIGURATION",
				"Initial Workers:             10",
				"Process Time Range:          5-20 cycles",
				"Starting Queue Size:         1000",
				tt.want,
			} {
				if !strings.Contains(out, s) {
					t.Errorf("header missing %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestJournal_Summary(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(&buf)
	r := request.New("1.1.1.1", "2.2.2.2", 1, request.JobProcessing)

	j.WorkerAdded(0, 1)
	j.WorkerAdded(0, 2)
	j.WorkerRemoved(5, 1)
	j.RequestCompleted(3, 2, r)
	j.RequestBlocked(4, r)
	j.RequestBlocked(4, r)
	buf.Reset()

	j.Summary(sim.Summary{Cycles: 100, FinalWorkers: 1, FinalQueue: 7})

	out := buf.String()
	for _, s := range []string{
		"SIMULATION SUMMARY",
		"RUN STATISTICS:",
		"Total Clock Cycles:          100",
		"Final Worker Count:          1",
		"Final Queue Size:            7",
		"Total Requests Processed:    1",
		"Total Requests Blocked:      2",
		"Workers Created:             2",
		"Workers Deleted:             1",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("summary missing %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "CANCELLED") {
		t.Error("completed run should not be marked cancelled")
	}

	buf.Reset()
	j.Summary(sim.Summary{Cycles: 3, Cancelled: true})
	if !strings.Contains(buf.String(), "SIMULATION SUMMARY (CANCELLED)") {
		t.Errorf("cancelled summary = %s", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJournal_WriteErrorIsKept(t *testing.T) {
	j := NewJournal(failingWriter{})
	j.Event(0, "a")
	j.Event(1, "b")
	if j.Err() == nil || j.Err().Error() != "disk full" {
		t.Errorf("Err() = %v", j.Err())
	}
}

func TestJournal_FullRun(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(&buf)

	cfg := sim.DefaultConfig()
	cfg.InitialWorkers = 2
	cfg.TotalCycles = 300
	cfg.Seed = 5
	cfg.Blocked = request.Blocklist{request.MustIPRange("0.0.0.0", "127.255.255.255")}

	s, err := sim.New(cfg, sim.WithReporter(j))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, separator) {
		t.Error("journal should open with the header block")
	}
	if !strings.Contains(out, "[Cycle 00000] Initialization complete") {
		t.Error("missing initialization line")
	}
	if !strings.Contains(out, "[Cycle 00300] RUN: Simulation complete") {
		t.Error("missing completion line")
	}

	st := j.Stats()
	if st.RequestsBlocked() == 0 {
		t.Error("half the address space is blocked; expected rejections")
	}
	if got := st.WorkersAdded() - st.WorkersRemoved(); got != s.PoolSize() {
		t.Errorf("added-removed = %d, PoolSize() = %d", got, s.PoolSize())
	}
	if st.RequestsStarted()-st.RequestsProcessed() > s.PoolSize() {
		t.Errorf("in-flight requests exceed pool size")
	}
}
