package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Iron-Ham/lbsim/internal/request"
	"github.com/Iron-Ham/lbsim/internal/scaling"
	"github.com/Iron-Ham/lbsim/internal/sim"
)

const (
	separator    = "================================================================================"
	summaryTitle = "                           SIMULATION SUMMARY"
	headerTitle  = "                        SIMULATION CONFIGURATION"
)

// Option configures a Journal.
type Option func(*Journal)

// WithConsole echoes every line to w. Colour is enabled when w is a
// terminal; use WithColor to override.
func WithConsole(w io.Writer) Option {
	return func(j *Journal) {
		j.console = w
		j.color = isTerminal(w)
	}
}

// WithColor forces console colour on or off.
func WithColor(enabled bool) Option {
	return func(j *Journal) {
		j.colorForced = &enabled
	}
}

// Journal is a sim.Reporter that writes the run log. It is safe for
// concurrent use, although the simulator only calls it from one goroutine.
type Journal struct {
	mu          sync.Mutex
	out         io.Writer
	console     io.Writer
	color       bool
	colorForced *bool
	styles      palette
	stats       Stats
	err         error
}

// NewJournal creates a Journal writing plain lines to out. A nil out writes
// only to the console, if one is configured.
func NewJournal(out io.Writer, opts ...Option) *Journal {
	j := &Journal{out: out}
	for _, opt := range opts {
		opt(j)
	}
	if j.colorForced != nil {
		j.color = *j.colorForced
	}
	j.styles = newPalette(j.color && j.console != nil)
	return j
}

var _ sim.Reporter = (*Journal)(nil)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Stats returns the run counters.
func (j *Journal) Stats() *Stats { return &j.stats }

// Err returns the first write error, if any. Later writes are still
// attempted.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// FormatLine returns the journal line for a cycle and message.
func FormatLine(cycle int, message string) string {
	return fmt.Sprintf("[Cycle %05d] %s", cycle, message)
}

func (j *Journal) line(style lipgloss.Style, cycle int, message string) {
	text := FormatLine(cycle, message)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.write(j.out, text+"\n")
	if j.console != nil {
		j.write(j.console, style.Render(text)+"\n")
	}
}

// block writes a multi-line block. plain goes to the file, styled to the
// console.
func (j *Journal) block(plain, styled []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.write(j.out, strings.Join(plain, "\n")+"\n")
	if j.console != nil {
		j.write(j.console, strings.Join(styled, "\n")+"\n")
	}
}

func (j *Journal) write(w io.Writer, s string) {
	if w == nil {
		return
	}
	if _, err := io.WriteString(w, s); err != nil && j.err == nil {
		j.err = err
	}
}

func (j *Journal) Event(cycle int, message string) {
	j.line(j.styles.event, cycle, message)
}

func (j *Journal) Scaled(cycle int, d scaling.Decision) {
	switch d.Action {
	case scaling.ActionScaleUp:
		j.line(j.styles.event, cycle, "SCALE UP: "+d.Reason+", adding worker")
	case scaling.ActionScaleDown:
		j.line(j.styles.event, cycle, "SCALE DOWN: "+d.Reason+", removing worker")
	}
}

func (j *Journal) WorkerAdded(cycle, workerID int) {
	j.stats.incr(&j.stats.workersAdded)
	j.line(j.styles.add, cycle, fmt.Sprintf("ADDED: Worker %d created", workerID))
}

func (j *Journal) WorkerRemoved(cycle, workerID int) {
	j.stats.incr(&j.stats.workersRemoved)
	j.line(j.styles.remove, cycle, fmt.Sprintf("REMOVED: Worker %d deallocated", workerID))
}

func (j *Journal) RequestStarted(cycle, workerID int, r request.Request) {
	j.stats.incr(&j.stats.started)
	j.line(j.styles.event, cycle, fmt.Sprintf("STARTED: Worker %d took request %s", workerID, r))
}

func (j *Journal) RequestCompleted(cycle, workerID int, r request.Request) {
	j.stats.incr(&j.stats.processed)
	j.line(j.styles.complete, cycle, fmt.Sprintf("COMPLETE: Worker %d finished request %s", workerID, r))
}

func (j *Journal) RequestBlocked(cycle int, r request.Request) {
	j.stats.incr(&j.stats.blocked)
	j.line(j.styles.remove, cycle, fmt.Sprintf("BLOCKED: Request from %s rejected (IP in blocked range)", r.Source))
}

func (j *Journal) Status(cycle, queueLen, poolSize int) {
	j.line(j.styles.status, cycle, fmt.Sprintf("STATUS: Queue size: %d | Active workers: %d", queueLen, poolSize))
}

func (j *Journal) Header(h sim.Header) {
	blocked := "N/A"
	if len(h.Blocked) > 0 {
		blocked = h.Blocked[0].Start() + " - " + h.Blocked[0].End()
		if extra := len(h.Blocked) - 1; extra > 0 {
			blocked += fmt.Sprintf(" (+%d more)", extra)
		}
	}

	rows := []string{
		stat("Initial Workers:", h.InitialWorkers),
		stat("Total Clock Cycles:", h.TotalCycles),
		stat("Process Time Range:", fmt.Sprintf("%d-%d cycles", h.MinDuration, h.MaxDuration)),
		stat("Starting Queue Size:", h.InitialQueue),
		stat("Blocked IP Range:", blocked),
	}

	s := j.styles
	plain := append([]string{separator, headerTitle, separator}, rows...)
	plain = append(plain, separator, "")
	styled := append([]string{s.banner.Render(separator), s.banner.Render(headerTitle), s.banner.Render(separator)}, rows...)
	styled = append(styled, s.banner.Render(separator), "")
	j.block(plain, styled)
}

func (j *Journal) Summary(sum sim.Summary) {
	st := &j.stats
	s := j.styles

	title := summaryTitle
	if sum.Cancelled {
		title += " (CANCELLED)"
	}

	run := []string{
		stat("Total Clock Cycles:", sum.Cycles),
		stat("Final Worker Count:", sum.FinalWorkers),
		stat("Final Queue Size:", sum.FinalQueue),
	}
	processed, blocked := st.RequestsProcessed(), st.RequestsBlocked()
	created, removed := st.WorkersAdded(), st.WorkersRemoved()

	plain := []string{"", separator, title, separator, "", "RUN STATISTICS:"}
	plain = append(plain, run...)
	plain = append(plain, "", "REQUEST STATISTICS:",
		stat("Total Requests Processed:", processed),
		stat("Total Requests Blocked:", blocked),
		"", "WORKER STATISTICS:",
		stat("Workers Created:", created),
		stat("Workers Deleted:", removed),
		"", separator)

	styled := []string{"", s.banner.Render(separator), s.banner.Render(title), s.banner.Render(separator), "", s.section.Render("RUN STATISTICS:")}
	styled = append(styled, run...)
	styled = append(styled, "", s.section.Render("REQUEST STATISTICS:"),
		styledStat("Total Requests Processed:", s.good, processed),
		styledStat("Total Requests Blocked:", s.bad, blocked),
		"", s.section.Render("WORKER STATISTICS:"),
		styledStat("Workers Created:", s.good, created),
		styledStat("Workers Deleted:", s.bad, removed),
		"", s.banner.Render(separator))

	j.block(plain, styled)
}

// stat formats a summary row with the label padded to a fixed column.
func stat(label string, value any) string {
	return fmt.Sprintf("  %-29s%v", label, value)
}

func styledStat(label string, style lipgloss.Style, value any) string {
	return fmt.Sprintf("  %-29s%s", label, style.Render(fmt.Sprint(value)))
}
