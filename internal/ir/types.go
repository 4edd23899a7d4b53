package ir

// Kind is the type discriminant carried by every persisted canvas record.
type Kind string

const (
	// KindGenerationFrame is a product-generation card showing an image.
	KindGenerationFrame Kind = "generation-frame"

	// KindFailedFrame is a card standing in for a failed generation.
	KindFailedFrame Kind = "failed-frame"

	// KindConnector is a visual link between two nodes, by id.
	KindConnector Kind = "connector"
)

// ValidKinds lists the recognized discriminants. Objects whose kind is not
// listed here (skeletons, decorations) are never persisted.
var ValidKinds = map[Kind]bool{
	KindGenerationFrame: true,
	KindFailedFrame:     true,
	KindConnector:       true,
}

// IsNode reports whether the kind is a node (as opposed to an edge).
func (k Kind) IsNode() bool {
	return k == KindGenerationFrame || k == KindFailedFrame
}

// Position is the top-left placement of an object on the canvas.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Transform holds the scale and rotation of an object.
type Transform struct {
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	Angle  float64 `json:"angle"`
}

// IdentityTransform is the transform applied when none was persisted.
var IdentityTransform = Transform{ScaleX: 1, ScaleY: 1, Angle: 0}

// Matrix is the 2D affine viewport transform [a b c d e f].
type Matrix [6]float64

// IdentityMatrix is the untransformed viewport.
var IdentityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// Slice returns the matrix as a slice, the form stored in snapshots.
func (m Matrix) Slice() []float64 {
	out := make([]float64, len(m))
	copy(out, m[:])
	return out
}
