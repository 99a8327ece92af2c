package engine

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"empty a", nil, []float32{1, 2}, 0},
		{"empty b", []float32{1, 2}, nil, 0},
		{"both empty", nil, nil, 0},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSymmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 2, 3}, {4, 5, 6}},
		{{0.1, -0.2}, {0.3, 0.4}},
		{{1}, {2}},
	}

	for _, pair := range pairs {
		ab := Cosine(pair[0], pair[1])
		ba := Cosine(pair[1], pair[0])
		if ab != ba {
			t.Errorf("Cosine not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestCosineSelf(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	if got := Cosine(v, v); math.Abs(got-1) > 1e-9 {
		t.Errorf("Cosine(v, v) = %v, want 1", got)
	}
}

func TestTopK(t *testing.T) {
	target := []float32{1, 0}
	candidates := []Candidate{
		{ID: "a", Embedding: []float32{1, 0}},     // score 1
		{ID: "b", Embedding: []float32{0, 1}},     // score 0
		{ID: "c", Embedding: []float32{1, 1}},     // score ~0.707
		{ID: "d", Embedding: nil},                 // skipped
		{ID: "e", Embedding: []float32{0.9, 0.1}}, // high
	}

	got := TopK(target, candidates, 2, 0.3)
	if len(got) != 2 {
		t.Fatalf("TopK returned %d results, want 2", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("best match = %s, want a", got[0].ID)
	}
	for _, sc := range got {
		if sc.Score < 0.3 {
			t.Errorf("candidate %s below threshold: %v", sc.ID, sc.Score)
		}
	}
}

func TestTopKFewerThanK(t *testing.T) {
	target := []float32{1, 0}
	candidates := []Candidate{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
	}

	got := TopK(target, candidates, 10, 0.5)
	if len(got) != 1 {
		t.Fatalf("TopK returned %d results, want 1 (only one above threshold)", len(got))
	}
}

func TestTopKStableTies(t *testing.T) {
	target := []float32{1, 0}
	// Identical vectors: identical scores, order must follow input order.
	candidates := []Candidate{
		{ID: "first", Embedding: []float32{1, 0}},
		{ID: "second", Embedding: []float32{1, 0}},
		{ID: "third", Embedding: []float32{1, 0}},
	}

	got := TopK(target, candidates, 3, 0)
	want := []string{"first", "second", "third"}
	for i, sc := range got {
		if sc.ID != want[i] {
			t.Errorf("rank %d = %s, want %s (ties must keep input order)", i, sc.ID, want[i])
		}
	}
}

func TestTopKEmptyTarget(t *testing.T) {
	got := TopK(nil, []Candidate{{ID: "a", Embedding: []float32{1}}}, 5, 0)
	if len(got) != 0 {
		t.Errorf("TopK with empty target returned %d results, want 0", len(got))
	}
}
