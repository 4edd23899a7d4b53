package ir

import (
	"encoding/json"
	"fmt"
)

// NodeRecord is a sealed tagged union of the semantic payloads a canvas
// object can carry. Only GenerationCard, FailedCard and Connector implement it.
//
// Live render objects never hold a NodeRecord; they hold a lookup key into an
// engine-owned registry.
type NodeRecord interface {
	// Kind returns the type discriminant written next to the payload.
	Kind() Kind

	// NodeID returns the stable id edges resolve against.
	// Connectors return "".
	NodeID() string

	// Clone returns a deep copy.
	Clone() NodeRecord

	nodeRecord() // Sealed
}

// GenerationCard is a product-generation result rendered from an image URL.
type GenerationCard struct {
	ID          string `json:"id"`
	OriginalURL string `json:"originalUrl"`
	Prompt      string `json:"prompt,omitempty"`
	Label       string `json:"label,omitempty"`
}

func (GenerationCard) nodeRecord() {}

// Kind implements NodeRecord.
func (GenerationCard) Kind() Kind { return KindGenerationFrame }

// NodeID implements NodeRecord.
func (c GenerationCard) NodeID() string { return c.ID }

// Clone implements NodeRecord.
func (c GenerationCard) Clone() NodeRecord { return c }

// FailedCard records a generation that did not produce an image.
// GenerationParams are kept so the host can offer a retry.
type FailedCard struct {
	ID               string         `json:"id"`
	Error            string         `json:"error"`
	GenerationParams map[string]any `json:"generationParams,omitempty"`
}

func (FailedCard) nodeRecord() {}

// Kind implements NodeRecord.
func (FailedCard) Kind() Kind { return KindFailedFrame }

// NodeID implements NodeRecord.
func (c FailedCard) NodeID() string { return c.ID }

// Clone implements NodeRecord.
func (c FailedCard) Clone() NodeRecord {
	c.GenerationParams = cloneMap(c.GenerationParams)
	return c
}

// Connector is an edge between two nodes, referenced by id.
// Both ids must resolve within the same snapshot for the edge to exist.
type Connector struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

func (Connector) nodeRecord() {}

// Kind implements NodeRecord.
func (Connector) Kind() Kind { return KindConnector }

// NodeID implements NodeRecord.
func (Connector) NodeID() string { return "" }

// Clone implements NodeRecord.
func (c Connector) Clone() NodeRecord { return c }

// Record is one serialized canvas object inside a Snapshot.
//
// Scale and angle are optional on the wire; Transform() substitutes identity
// values for absent fields.
type Record struct {
	Type   Kind       `json:"type"`
	Data   NodeRecord `json:"data"`
	Left   float64    `json:"left"`
	Top    float64    `json:"top"`
	ScaleX *float64   `json:"scaleX,omitempty"`
	ScaleY *float64   `json:"scaleY,omitempty"`
	Angle  *float64   `json:"angle,omitempty"`
}

// NewRecord builds a record for data at pos with a fully specified transform.
func NewRecord(data NodeRecord, pos Position, tr Transform) Record {
	return Record{
		Type:   data.Kind(),
		Data:   data,
		Left:   pos.Left,
		Top:    pos.Top,
		ScaleX: floatPtr(tr.ScaleX),
		ScaleY: floatPtr(tr.ScaleY),
		Angle:  floatPtr(tr.Angle),
	}
}

// Position returns the record's placement.
func (r Record) Position() Position {
	return Position{Left: r.Left, Top: r.Top}
}

// Transform returns the persisted transform, identity for absent fields.
func (r Record) Transform() Transform {
	tr := IdentityTransform
	if r.ScaleX != nil {
		tr.ScaleX = *r.ScaleX
	}
	if r.ScaleY != nil {
		tr.ScaleY = *r.ScaleY
	}
	if r.Angle != nil {
		tr.Angle = *r.Angle
	}
	return tr
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Data != nil {
		out.Data = r.Data.Clone()
	}
	out.ScaleX = clonePtr(r.ScaleX)
	out.ScaleY = clonePtr(r.ScaleY)
	out.Angle = clonePtr(r.Angle)
	return out
}

// UnmarshalJSON decodes the data payload according to the type discriminant.
func (r *Record) UnmarshalJSON(b []byte) error {
	var aux struct {
		Type   Kind            `json:"type"`
		Data   json.RawMessage `json:"data"`
		Left   float64         `json:"left"`
		Top    float64         `json:"top"`
		ScaleX *float64        `json:"scaleX"`
		ScaleY *float64        `json:"scaleY"`
		Angle  *float64        `json:"angle"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	data, err := decodeNodeRecord(aux.Type, aux.Data)
	if err != nil {
		return err
	}

	*r = Record{
		Type:   aux.Type,
		Data:   data,
		Left:   aux.Left,
		Top:    aux.Top,
		ScaleX: aux.ScaleX,
		ScaleY: aux.ScaleY,
		Angle:  aux.Angle,
	}
	return nil
}

// decodeNodeRecord picks the concrete payload type for kind.
func decodeNodeRecord(kind Kind, raw json.RawMessage) (NodeRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	switch kind {
	case KindGenerationFrame:
		var c GenerationCard
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", kind, err)
		}
		return c, nil
	case KindFailedFrame:
		var c FailedCard
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", kind, err)
		}
		return c, nil
	case KindConnector:
		var c Connector
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", kind, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", kind)
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneMap deep-copies a JSON-shaped map.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return val
	}
}
