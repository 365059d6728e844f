// Package codec implements the DHCPv6 wire-format codec: messages, options,
// sub-options and DUIDs, and the containment grammar that governs which
// elements may nest inside which.
package codec

import "fmt"

// LengthOverflowError is returned when an element's declared length exceeds
// the number of bytes remaining in the buffer being parsed.
type LengthOverflowError struct {
	Declared  int
	Remaining int
}

func (e *LengthOverflowError) Error() string {
	return fmt.Sprintf("dhcp6: declared length %d exceeds %d remaining bytes", e.Declared, e.Remaining)
}

// BadLabelError is returned when a domain name label is too long or contains
// bytes outside the alphanumeric range permitted by the wire format.
type BadLabelError struct {
	Reason string
}

func (e *BadLabelError) Error() string { return "dhcp6: bad domain name label: " + e.Reason }

// UnterminatedNameError is returned when a domain name does not end with a
// zero-length (root) label.
type UnterminatedNameError struct{}

func (e *UnterminatedNameError) Error() string { return "dhcp6: domain name is not terminated" }

// ContainmentViolationError is returned by Validate when a container holds
// fewer or more children of some class than the containment grammar allows.
type ContainmentViolationError struct {
	Parent   string
	Child    string
	Count    int
	Min, Max int
}

func (e *ContainmentViolationError) Error() string {
	return fmt.Sprintf("dhcp6: %s may contain %d-%d %s, found %d", e.Parent, e.Min, e.Max, e.Child, e.Count)
}

// ErrInvalidPacket is returned when a message or sub-element does not
// contain enough bytes to be a syntactically valid wire element.
var ErrInvalidPacket = fmt.Errorf("dhcp6: invalid packet")
