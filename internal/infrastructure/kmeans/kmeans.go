// Package kmeans implements seeded Lloyd-style iterative relocation
// clustering over standardized feature matrices.
package kmeans

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

type Clusterer struct {
	K        int
	MaxIter  int
	Seed     uint64
	restarts int
}

func New(k, maxIter int, seed uint64) *Clusterer {
	if k <= 0 {
		k = 3
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	return &Clusterer{K: k, MaxIter: maxIter, Seed: seed, restarts: 5}
}

// Partition assigns every row of m to one of K clusters and returns the
// per-row labels. The RNG is seeded, so identical input yields identical
// labels; labels carry no meaning across different inputs.
func (c *Clusterer) Partition(m *mat.Dense) ([]int, error) {
	if m == nil {
		return nil, domain.WrapError(domain.ErrInsufficientData, "kmeans partition",
			fmt.Errorf("empty feature matrix"))
	}
	rows, cols := m.Dims()
	if rows < c.K {
		return nil, domain.WrapError(domain.ErrInsufficientData, "kmeans partition",
			fmt.Errorf("%d rows for k=%d clusters", rows, c.K))
	}

	rng := rand.New(rand.NewPCG(c.Seed, c.Seed))

	bestLabels := make([]int, rows)
	bestInertia := math.Inf(1)
	for attempt := 0; attempt < c.restarts; attempt++ {
		labels, inertia := c.run(m, rows, cols, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}
	return bestLabels, nil
}

// run executes one seeded k-means++ initialization followed by Lloyd
// iterations until assignments stabilize or the cap is reached. It returns
// the labels and the within-cluster sum of squared distances.
func (c *Clusterer) run(m *mat.Dense, rows, cols int, rng *rand.Rand) ([]int, float64) {
	centroids := c.initialCentroids(m, rows, cols, rng)
	labels := make([]int, rows)
	counts := make([]int, c.K)

	for iter := 0; iter < c.MaxIter; iter++ {
		changed := iter == 0
		for i := 0; i < rows; i++ {
			best := nearestCentroid(m.RawRowView(i), centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centroids as the mean of assigned points; a cluster
		// that lost all its points keeps its previous centroid.
		next := make([][]float64, c.K)
		for k := range next {
			next[k] = make([]float64, cols)
			counts[k] = 0
		}
		for i := 0; i < rows; i++ {
			floats.Add(next[labels[i]], m.RawRowView(i))
			counts[labels[i]]++
		}
		stable := true
		for k := range next {
			if counts[k] == 0 {
				next[k] = centroids[k]
				continue
			}
			floats.Scale(1/float64(counts[k]), next[k])
			if floats.Distance(next[k], centroids[k], 2) > 1e-9 {
				stable = false
			}
		}
		centroids = next
		if stable {
			break
		}
	}

	c.fillEmptyClusters(m, rows, labels, centroids)

	inertia := 0.0
	for i := 0; i < rows; i++ {
		d := floats.Distance(m.RawRowView(i), centroids[labels[i]], 2)
		inertia += d * d
	}
	return labels, inertia
}

// fillEmptyClusters guarantees every label in [0, K) is used at least once
// when rows >= K, by relocating the point farthest from its centroid into
// each empty cluster.
func (c *Clusterer) fillEmptyClusters(m *mat.Dense, rows int, labels []int, centroids [][]float64) {
	counts := make([]int, c.K)
	for _, l := range labels {
		counts[l]++
	}
	for k := 0; k < c.K; k++ {
		if counts[k] > 0 {
			continue
		}
		farthest, farthestDist := -1, -1.0
		for i := 0; i < rows; i++ {
			if counts[labels[i]] <= 1 {
				continue
			}
			if d := floats.Distance(m.RawRowView(i), centroids[labels[i]], 2); d > farthestDist {
				farthestDist = d
				farthest = i
			}
		}
		if farthest < 0 {
			continue
		}
		counts[labels[farthest]]--
		labels[farthest] = k
		counts[k]++
		centroids[k] = append([]float64(nil), m.RawRowView(farthest)...)
	}
}

// initialCentroids seeds with the k-means++ scheme: the first centroid is
// uniform, the rest are drawn proportionally to squared distance from the
// nearest chosen centroid.
func (c *Clusterer) initialCentroids(m *mat.Dense, rows, cols int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, c.K)
	first := make([]float64, cols)
	copy(first, m.RawRowView(rng.IntN(rows)))
	centroids = append(centroids, first)

	dist2 := make([]float64, rows)
	for len(centroids) < c.K {
		total := 0.0
		for i := 0; i < rows; i++ {
			d := floats.Distance(m.RawRowView(i), centroids[nearestCentroid(m.RawRowView(i), centroids)], 2)
			dist2[i] = d * d
			total += dist2[i]
		}

		pick := rows - 1
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i := 0; i < rows; i++ {
				acc += dist2[i]
				if acc >= target {
					pick = i
					break
				}
			}
		} else {
			pick = rng.IntN(rows)
		}
		next := make([]float64, cols)
		copy(next, m.RawRowView(pick))
		centroids = append(centroids, next)
	}
	return centroids
}

func nearestCentroid(point []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for k, centroid := range centroids {
		if d := floats.Distance(point, centroid, 2); d < bestDist {
			bestDist = d
			best = k
		}
	}
	return best
}
