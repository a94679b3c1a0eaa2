package flow

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// EmbeddingFeatures is the embedding width the convolutional stage expects.
const EmbeddingFeatures = 64

// LinearPointNet is a reference PointFeatureNet: a single linear layer with
// ReLU, AugCols in, OutF out. It stands in for the trained per-point MLP so
// the scatter path can be exercised end to end; it is not a substitute for
// the real network.
type LinearPointNet struct {
	W    *mat.Dense // OutF x AugCols
	Bias []float64  // OutF
	OutF int
}

// NewLinearPointNet builds a net with Kaiming-uniform initialised weights,
// matching the initialisation of the trained model. The rng is injected so
// tests can fix the seed.
func NewLinearPointNet(outF int, rng *rand.Rand) *LinearPointNet {
	bound := math.Sqrt(6.0 / float64(AugCols))
	w := make([]float64, outF*AugCols)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * bound
	}
	return &LinearPointNet{
		W:    mat.NewDense(outF, AugCols, w),
		Bias: make([]float64, outF),
		OutF: outF,
	}
}

// OutFeatures returns the embedding width.
func (n *LinearPointNet) OutFeatures() int { return n.OutF }

// Forward maps the batch's augmented points to embeddings and zeroes rows
// under the padding mask, so the output can go straight into Scatter.
func (n *LinearPointNet) Forward(b *Batch) Embeddings {
	out := NewEmbeddings(b.B, b.MaxN, n.OutF)
	x := mat.NewVecDense(AugCols, nil)
	y := mat.NewVecDense(n.OutF, nil)
	for bi := 0; bi < b.B; bi++ {
		for i := 0; i < b.MaxN; i++ {
			slot := bi*b.MaxN + i
			if b.Mask[slot] {
				continue
			}
			row := b.Points[slot*AugCols : (slot+1)*AugCols]
			for j, v := range row {
				x.SetVec(j, float64(v))
			}
			y.MulVec(n.W, x)
			dst := out.Row(bi, i)
			for f := 0; f < n.OutF; f++ {
				v := y.AtVec(f) + n.Bias[f]
				if v < 0 { // ReLU
					v = 0
				}
				dst[f] = float32(v)
			}
		}
	}
	return out
}
