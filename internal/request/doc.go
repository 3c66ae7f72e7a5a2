// Package request defines the unit of work flowing through the simulator and
// the helpers that create and filter it.
//
// A [Request] is an immutable value: a source and destination IPv4 address, a
// processing duration measured in cycles, and a [JobKind] tag used only for
// reporting. Requests are produced by a [Generator] driven by an injectable
// [Rand] source so tests can script every draw.
//
// An [IPRange] is an inclusive interval over the 32-bit big-endian encoding of
// IPv4 addresses. The simulator rejects any request whose source address falls
// inside a configured range before it reaches the queue.
package request
