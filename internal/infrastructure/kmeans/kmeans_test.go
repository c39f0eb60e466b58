package kmeans

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

// Three well-separated blobs of three points each.
func blobMatrix() *mat.Dense {
	data := []float64{
		0.0, 0.1,
		0.1, 0.0,
		0.1, 0.1,
		5.0, 5.1,
		5.1, 5.0,
		5.1, 5.1,
		10.0, 0.1,
		10.1, 0.0,
		10.1, 0.1,
	}
	return mat.NewDense(9, 2, data)
}

func TestPartitionSeparatesBlobs(t *testing.T) {
	clusterer := New(3, 100, 42)

	labels, err := clusterer.Partition(blobMatrix())
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	if len(labels) != 9 {
		t.Fatalf("expected 9 labels, got %d", len(labels))
	}

	distinct := map[int]bool{}
	for _, l := range labels {
		if l < 0 || l >= 3 {
			t.Fatalf("label out of range: %d", l)
		}
		distinct[l] = true
	}
	if len(distinct) != 3 {
		t.Fatalf("expected 3 distinct labels, got %v", distinct)
	}

	// Points of the same blob must share a label.
	for blob := 0; blob < 3; blob++ {
		base := labels[blob*3]
		for i := 1; i < 3; i++ {
			if labels[blob*3+i] != base {
				t.Fatalf("blob %d split across clusters: %v", blob, labels)
			}
		}
	}
}

func TestPartitionIsDeterministicForSeed(t *testing.T) {
	first, err := New(3, 100, 7).Partition(blobMatrix())
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	second, err := New(3, 100, 7).Partition(blobMatrix())
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("labels differ for identical seed: %v vs %v", first, second)
		}
	}
}

func TestPartitionUsesAllLabelsOnDegenerateData(t *testing.T) {
	// Identical points still yield k distinct labels when rows >= k.
	data := make([]float64, 10)
	m := mat.NewDense(5, 2, data)

	labels, err := New(3, 100, 1).Partition(m)
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	distinct := map[int]bool{}
	for _, l := range labels {
		distinct[l] = true
	}
	if len(distinct) != 3 {
		t.Fatalf("expected 3 distinct labels, got %v", labels)
	}
}

func TestPartitionRejectsTooFewRows(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{0, 0, 1, 1})

	_, err := New(3, 100, 1).Partition(m)
	if !domain.IsKind(err, domain.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestPartitionRejectsNilMatrix(t *testing.T) {
	_, err := New(3, 100, 1).Partition(nil)
	if !domain.IsKind(err, domain.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}
