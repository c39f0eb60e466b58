// Package forest implements a seeded random-forest binary classifier:
// bagged CART trees with Gini splits, per-feature importances via mean
// impurity decrease, and class probability as the tree vote fraction.
package forest

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

type Config struct {
	Trees       int
	MaxDepth    int
	MinLeafSize int
	Seed        uint64
}

func DefaultConfig() Config {
	return Config{
		Trees:       100,
		MaxDepth:    12,
		MinLeafSize: 2,
		Seed:        42,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c
	if out.Trees <= 0 {
		out.Trees = def.Trees
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = def.MaxDepth
	}
	if out.MinLeafSize <= 0 {
		out.MinLeafSize = def.MinLeafSize
	}
	return out
}

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	leaf      bool
	positive  float64 // fraction of positive samples at a leaf
}

type Forest struct {
	cfg         Config
	trees       []*node
	importances []float64
	features    int
}

// Train fits the forest on x (rows of equal width) against binary labels y.
// Training is deterministic for a fixed seed and input.
func Train(x [][]float64, y []int, cfg Config) (*Forest, error) {
	if len(x) == 0 {
		return nil, domain.WrapError(domain.ErrInsufficientData, "train forest",
			fmt.Errorf("no usable training rows"))
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("train forest: %d rows but %d labels", len(x), len(y))
	}

	cfg = cfg.normalize()
	f := &Forest{
		cfg:         cfg,
		features:    len(x[0]),
		importances: make([]float64, len(x[0])),
	}
	mtry := int(math.Ceil(math.Sqrt(float64(f.features))))
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	for t := 0; t < cfg.Trees; t++ {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.IntN(len(x))
		}
		f.trees = append(f.trees, f.buildNode(x, y, sample, 0, mtry, rng))
	}

	total := 0.0
	for _, v := range f.importances {
		total += v
	}
	if total > 0 {
		for i := range f.importances {
			f.importances[i] /= total
		}
	}
	return f, nil
}

// PredictProba returns the fraction of trees voting for the positive class.
func (f *Forest) PredictProba(row []float64) (float64, error) {
	if len(row) != f.features {
		return 0, domain.WrapError(domain.ErrInvalidInput, "forest predict",
			fmt.Errorf("expected %d features, got %d", f.features, len(row)))
	}
	votes := 0.0
	for _, tree := range f.trees {
		votes += predictNode(tree, row)
	}
	return votes / float64(len(f.trees)), nil
}

// Predict returns the binary label and the probability of the predicted
// class (always >= 0.5).
func (f *Forest) Predict(row []float64) (int, float64, error) {
	p, err := f.PredictProba(row)
	if err != nil {
		return 0, 0, err
	}
	if p >= 0.5 {
		return 1, p, nil
	}
	return 0, 1 - p, nil
}

// Importances returns the normalized mean-impurity-decrease per feature,
// in input order.
func (f *Forest) Importances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

func predictNode(n *node, row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	if n.positive >= 0.5 {
		return 1
	}
	return 0
}

func (f *Forest) buildNode(x [][]float64, y []int, idx []int, depth, mtry int, rng *rand.Rand) *node {
	positives := 0
	for _, i := range idx {
		positives += y[i]
	}
	pos := float64(positives) / float64(len(idx))

	if depth >= f.cfg.MaxDepth || len(idx) < 2*f.cfg.MinLeafSize || positives == 0 || positives == len(idx) {
		return &node{leaf: true, positive: pos}
	}

	feature, threshold, gain := f.bestSplit(x, y, idx, mtry, rng)
	if feature < 0 {
		return &node{leaf: true, positive: pos}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < f.cfg.MinLeafSize || len(right) < f.cfg.MinLeafSize {
		return &node{leaf: true, positive: pos}
	}

	f.importances[feature] += gain * float64(len(idx))

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      f.buildNode(x, y, left, depth+1, mtry, rng),
		right:     f.buildNode(x, y, right, depth+1, mtry, rng),
	}
}

// bestSplit evaluates a random feature subset of size mtry and returns the
// split with the highest Gini gain, or feature -1 when no split improves.
func (f *Forest) bestSplit(x [][]float64, y []int, idx []int, mtry int, rng *rand.Rand) (int, float64, float64) {
	parent := giniOf(y, idx)

	candidates := rng.Perm(f.features)[:mtry]
	sort.Ints(candidates) // stable evaluation order for a given subset

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	values := make([]float64, 0, len(idx))
	for _, feature := range candidates {
		values = values[:0]
		for _, i := range idx {
			values = append(values, x[i][feature])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			leftN, leftPos, rightN, rightPos := 0, 0, 0, 0
			for _, i := range idx {
				if x[i][feature] <= threshold {
					leftN++
					leftPos += y[i]
				} else {
					rightN++
					rightPos += y[i]
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}
			total := float64(leftN + rightN)
			gain := parent -
				float64(leftN)/total*gini(leftPos, leftN) -
				float64(rightN)/total*gini(rightPos, rightN)
			if gain > bestGain {
				bestFeature, bestThreshold, bestGain = feature, threshold, gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func gini(positives, n int) float64 {
	p := float64(positives) / float64(n)
	return 2 * p * (1 - p)
}

func giniOf(y []int, idx []int) float64 {
	positives := 0
	for _, i := range idx {
		positives += y[i]
	}
	return gini(positives, len(idx))
}
