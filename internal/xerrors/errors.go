// Package xerrors defines the error kinds from spec.md §7 as sentinel
// errors plus the typed wrappers that carry enough context to log and
// report them, grounded on the teacher's util.ErrXxx / *Error pattern.
package xerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Environment errors: reported, exit 1, no run log is written.
var (
	ErrNoDriver            = errors.New("no device driver present")
	ErrNoDevices           = errors.New("no devices detected")
	ErrUnsupportedBoardMix = errors.New("unsupported board family in device set")
)

// Discovery errors.
var (
	ErrIdentityUnreadable = errors.New("ethernet identity unreadable")
	ErrFirmwareMismatch   = errors.New("firmware version mismatch across ASICs")
)

// Structural errors: fatal in mesh/mesh_v2 layouts, a warning elsewhere.
var ErrStructuralDeficit = errors.New("connection graph has fewer edges than expected")

// Assignment errors.
var (
	ErrNoViableChain  = errors.New("no cycle or non-empty longest path found")
	ErrNoAxisAvailable = errors.New("no unused axis available from parent")
	ErrNonPlanarMesh  = errors.New("no candidate coordinate satisfies the mesh predicate")
)

// Transport and post-reset errors.
var (
	ErrTransport            = errors.New("SPI/ARC transport failure")
	ErrEnumerationShortfall = errors.New("fewer devices detected after reset than expected")
)

// DiscoveryError wraps a discovery-phase sentinel with the ASIC index and
// board id that triggered it.
type DiscoveryError struct {
	Index   int
	BoardID uint64
	Err     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery: asic %d (board %016x): %v", e.Index, e.BoardID, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// AssignmentError wraps an assignment-phase sentinel with the layout name.
type AssignmentError struct {
	Layout string
	Err    error
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("assignment (%s): %v", e.Layout, e.Err)
}

func (e *AssignmentError) Unwrap() error { return e.Err }

// TransportError wraps ErrTransport with the failing ASIC and operation.
type TransportError struct {
	Index     int
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: asic %d %s: %v", e.Index, e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return ErrTransport }

// StructuralWarning records a soft structural finding (missing/extra edges)
// that does not abort a run outside mesh/mesh_v2 layouts.
type StructuralWarning struct {
	Expected int
	Actual   int
}

func (w *StructuralWarning) Error() string {
	if w.Actual < w.Expected {
		return fmt.Sprintf("missing %d connection(s): expected %d, found %d", w.Expected-w.Actual, w.Expected, w.Actual)
	}
	return fmt.Sprintf("unexpected %d extra connection(s): expected %d, found %d", w.Actual-w.Expected, w.Expected, w.Actual)
}

// ValidationBuilder accumulates non-fatal validation findings, grounded on
// the teacher's util.ValidationBuilder.
type ValidationBuilder struct {
	messages []string
}

// Add appends a message unless condition holds.
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.messages = append(v.messages, message)
	}
	return v
}

// Addf appends a formatted message unless condition holds.
func (v *ValidationBuilder) Addf(condition bool, format string, args ...interface{}) *ValidationBuilder {
	if !condition {
		v.messages = append(v.messages, fmt.Sprintf(format, args...))
	}
	return v
}

// HasFindings reports whether any message was accumulated.
func (v *ValidationBuilder) HasFindings() bool { return len(v.messages) > 0 }

// Messages returns the accumulated findings.
func (v *ValidationBuilder) Messages() []string { return v.messages }

// Join renders all findings as a single line, separated by "; ".
func (v *ValidationBuilder) Join() string { return strings.Join(v.messages, "; ") }
