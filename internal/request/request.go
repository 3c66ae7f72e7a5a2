package request

import "fmt"

// JobKind tags a request for reporting. It has no effect on processing.
type JobKind string

const (
	// JobProcessing marks a batch-style request.
	JobProcessing JobKind = "processing"

	// JobStreaming marks a streaming request.
	JobStreaming JobKind = "streaming"
)

// String returns the string representation of the job kind.
func (k JobKind) String() string {
	return string(k)
}

// Short returns the single-letter code used in journal lines.
func (k JobKind) Short() string {
	switch k {
	case JobStreaming:
		return "S"
	default:
		return "P"
	}
}

// Request is a unit of work waiting for, or owned by, a worker.
// It is passed by value and never modified after creation.
type Request struct {
	// Source is the dotted-decimal IPv4 address the request came from.
	// It is the address checked against blocked ranges.
	Source string

	// Destination is the dotted-decimal IPv4 address the request targets.
	Destination string

	// Duration is the number of cycles a worker spends on the request.
	Duration int

	// Kind tags the request for reporting.
	Kind JobKind
}

// New creates a Request.
func New(source, destination string, duration int, kind JobKind) Request {
	return Request{
		Source:      source,
		Destination: destination,
		Duration:    duration,
		Kind:        kind,
	}
}

// String returns a compact description such as "10.0.0.1 -> 10.0.0.2 (7 cycles, processing)".
func (r Request) String() string {
	return fmt.Sprintf("%s -> %s (%d cycles, %s)", r.Source, r.Destination, r.Duration, r.Kind)
}
