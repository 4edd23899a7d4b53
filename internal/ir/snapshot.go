package ir

import (
	"encoding/json"
)

// Snapshot is a self-contained serialization of the canvas graph at one
// point in time. Object order is canvas insertion order, which governs draw
// order on restore.
//
// A snapshot is immutable once pushed into history. Callers that need to
// modify one must Clone it first.
type Snapshot struct {
	Objects           []Record  `json:"objects"`
	ViewportTransform []float64 `json:"viewportTransform,omitempty"`
}

// Viewport returns the viewport matrix if it is well-formed (exactly six
// components).
func (s Snapshot) Viewport() (Matrix, bool) {
	var m Matrix
	if len(s.ViewportTransform) != len(m) {
		return m, false
	}
	copy(m[:], s.ViewportTransform)
	return m, true
}

// Nodes returns the non-connector records in order.
func (s Snapshot) Nodes() []Record {
	var out []Record
	for _, r := range s.Objects {
		if r.Type.IsNode() {
			out = append(out, r)
		}
	}
	return out
}

// Connectors returns the connector records in order.
func (s Snapshot) Connectors() []Record {
	var out []Record
	for _, r := range s.Objects {
		if r.Type == KindConnector {
			out = append(out, r)
		}
	}
	return out
}

// NodeIDs returns the ids of all node records in order.
func (s Snapshot) NodeIDs() []string {
	var ids []string
	for _, r := range s.Nodes() {
		if r.Data != nil {
			ids = append(ids, r.Data.NodeID())
		}
	}
	return ids
}

// Clone returns a deep copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Objects: make([]Record, len(s.Objects)),
	}
	for i, r := range s.Objects {
		out.Objects[i] = r.Clone()
	}
	if s.ViewportTransform != nil {
		out.ViewportTransform = make([]float64, len(s.ViewportTransform))
		copy(out.ViewportTransform, s.ViewportTransform)
	}
	return out
}

// UnmarshalJSON decodes a snapshot. A viewport holding non-numeric
// components is treated as absent rather than failing the whole snapshot;
// restore then leaves the live viewport untouched.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var aux struct {
		Objects           []Record        `json:"objects"`
		ViewportTransform json.RawMessage `json:"viewportTransform"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	s.Objects = aux.Objects
	if s.Objects == nil {
		s.Objects = []Record{}
	}
	s.ViewportTransform = decodeViewport(aux.ViewportTransform)
	return nil
}

// decodeViewport returns the components when every one is a number.
// Length is not checked here; Viewport() does that.
func decodeViewport(raw json.RawMessage) []float64 {
	if len(raw) == 0 {
		return nil
	}
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	out := make([]float64, 0, len(elems))
	for _, e := range elems {
		f, ok := e.(float64)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}
