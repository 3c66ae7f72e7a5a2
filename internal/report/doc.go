// Package report renders a simulation run as a human-readable journal.
//
// [Journal] implements sim.Reporter. Every call becomes one line of the form
//
//	[Cycle 00042] ADDED: Worker 3 created
//
// written to a plain-text sink (normally a rotating log file) and optionally
// echoed to a console with lipgloss colours. The journal also keeps the run
// counters in a [Stats] value, which backs the summary block.
package report
