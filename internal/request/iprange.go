package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/lbsim/internal/errors"
)

// ParseAddr converts a dotted-decimal IPv4 address to its 32-bit big-endian
// integer encoding. Octets may carry leading zeros ("010.000.000.001").
func ParseAddr(s string) (uint32, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", errors.ErrInvalidAddress, s)
	}
	var addr uint32
	for _, p := range parts {
		octet, err := strconv.Atoi(p)
		if err != nil || octet < 0 || octet > 255 {
			return 0, fmt.Errorf("%w: %q", errors.ErrInvalidAddress, s)
		}
		addr = addr<<8 | uint32(octet)
	}
	return addr, nil
}

// FormatAddr converts a 32-bit big-endian encoding back to dotted-decimal form.
func FormatAddr(addr uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", addr>>24, addr>>16&0xff, addr>>8&0xff, addr&0xff)
}

// IPRange is an inclusive interval of IPv4 addresses.
type IPRange struct {
	start, end         uint32
	startText, endText string
}

// NewIPRange builds a range from two dotted-decimal bounds.
// Both bounds must parse and start must not exceed end.
func NewIPRange(start, end string) (IPRange, error) {
	lo, err := ParseAddr(start)
	if err != nil {
		return IPRange{}, errors.NewValidationError("range start is not an IPv4 address").
			WithValue(start).WithCause(err)
	}
	hi, err := ParseAddr(end)
	if err != nil {
		return IPRange{}, errors.NewValidationError("range end is not an IPv4 address").
			WithValue(end).WithCause(err)
	}
	if lo > hi {
		return IPRange{}, errors.NewValidationError("range start is after range end").
			WithValue(start + "-" + end).WithCause(errors.ErrInvalidRange)
	}
	return IPRange{
		start:     lo,
		end:       hi,
		startText: strings.TrimSpace(start),
		endText:   strings.TrimSpace(end),
	}, nil
}

// MustIPRange is like NewIPRange but panics on error. Intended for tests and
// package-level fixtures.
func MustIPRange(start, end string) IPRange {
	r, err := NewIPRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether addr lies within the range, inclusive of both
// bounds. Addresses that do not parse are never contained.
func (r IPRange) Contains(addr string) bool {
	n, err := ParseAddr(addr)
	if err != nil {
		return false
	}
	return r.ContainsAddr(n)
}

// ContainsAddr is Contains for an already-encoded address.
func (r IPRange) ContainsAddr(addr uint32) bool {
	return addr >= r.start && addr <= r.end
}

// Start returns the lower bound as it was written.
func (r IPRange) Start() string { return r.startText }

// End returns the upper bound as it was written.
func (r IPRange) End() string { return r.endText }

// String returns the range in "start-end" form.
func (r IPRange) String() string {
	return r.startText + "-" + r.endText
}

// ParseRanges parses a comma-separated list of "start-end" pairs.
// Malformed entries are skipped and reported in the returned error slice so
// callers can warn without discarding the valid ranges.
func ParseRanges(s string) ([]IPRange, []error) {
	var ranges []IPRange
	var errs []error
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		start, end, ok := strings.Cut(entry, "-")
		if !ok {
			errs = append(errs, errors.NewValidationError("range must be written as start-end").
				WithValue(entry).WithCause(errors.ErrInvalidRange))
			continue
		}
		r, err := NewIPRange(start, end)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, errs
}

// Blocklist is an ordered set of ranges checked together.
type Blocklist []IPRange

// Blocks reports whether addr falls in any range of the list.
func (b Blocklist) Blocks(addr string) bool {
	n, err := ParseAddr(addr)
	if err != nil {
		return false
	}
	for _, r := range b {
		if r.ContainsAddr(n) {
			return true
		}
	}
	return false
}

// String joins the ranges in the configuration file syntax.
func (b Blocklist) String() string {
	parts := make([]string, len(b))
	for i, r := range b {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
