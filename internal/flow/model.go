package flow

// PointFeatureNet is the per-point embedding stage bracketing the scatter
// transform: augmented point rows in, fixed-width embeddings out. The real
// network is an external collaborator; this package only depends on the
// tensor shapes.
type PointFeatureNet interface {
	// Forward maps a padded batch of augmented points [B, N, AugCols] to
	// embeddings [B, N, OutFeatures()].
	Forward(b *Batch) Embeddings
	OutFeatures() int
}

// GridTransform is the convolutional stage applied between Scatter and
// Unscatter. Opaque: same batch, documented output channel count.
type GridTransform interface {
	Apply(grid FeatureGrid) FeatureGrid
	OutChannels() int
}

// IdentityGridTransform passes the grid through unchanged. Used by tests
// and tools that exercise the scatter round trip without a trained network.
type IdentityGridTransform struct{}

// Apply returns the grid unmodified.
func (IdentityGridTransform) Apply(grid FeatureGrid) FeatureGrid { return grid }

// OutChannels reports 0, meaning "same as input".
func (IdentityGridTransform) OutChannels() int { return 0 }
