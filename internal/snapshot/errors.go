package snapshot

import (
	"errors"
	"fmt"

	"github.com/roach88/studio/internal/ir"
)

// IssueCode categorizes a recoverable reconstruction problem.
type IssueCode string

const (
	// ErrCodeNodeFailed indicates a node factory failed; the node was omitted.
	ErrCodeNodeFailed IssueCode = "NODE_FAILED"

	// ErrCodeEdgeUnresolved indicates a connector endpoint id was not
	// present after the node pass; the connector was omitted.
	ErrCodeEdgeUnresolved IssueCode = "EDGE_UNRESOLVED"

	// ErrCodeConnectorFailed indicates the connector factory failed.
	ErrCodeConnectorFailed IssueCode = "CONNECTOR_FAILED"

	// ErrCodeViewportMalformed indicates the viewport was not six numbers;
	// the live viewport was left untouched.
	ErrCodeViewportMalformed IssueCode = "VIEWPORT_MALFORMED"
)

var (
	// ErrNoObject is reported when a factory returns neither an object nor
	// an error.
	ErrNoObject = errors.New("factory returned no object")

	// ErrNoData is reported for a node record without a payload.
	ErrNoData = errors.New("record has no data")
)

// ReconstructionError describes one recovered problem during Restore.
type ReconstructionError struct {
	// Code identifies the problem category.
	Code IssueCode

	// Kind is the record type involved (empty for viewport issues).
	Kind ir.Kind

	// NodeID is the node id, or "source->target" for connectors.
	NodeID string

	// Err is the underlying factory error, if any.
	Err error
}

// Error implements the error interface.
func (e *ReconstructionError) Error() string {
	msg := string(e.Code)
	if e.Kind != "" {
		msg += fmt.Sprintf(" %s", e.Kind)
	}
	if e.NodeID != "" {
		msg += fmt.Sprintf(" %q", e.NodeID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying factory error.
func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

// IsNodeFailure returns true if err is a node factory failure.
// Uses errors.As to handle wrapped errors.
func IsNodeFailure(err error) bool {
	var re *ReconstructionError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNodeFailed
	}
	return false
}

// IsUnresolvedEdge returns true if err is a dropped connector.
func IsUnresolvedEdge(err error) bool {
	var re *ReconstructionError
	if errors.As(err, &re) {
		return re.Code == ErrCodeEdgeUnresolved
	}
	return false
}
