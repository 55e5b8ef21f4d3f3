package diarization

import (
	"math"
	"testing"
)

func TestClusterer_SingleSpeakerBudget(t *testing.T) {
	c := NewClusterer(1, 0.5)

	// Wildly different embeddings still collapse into cluster 0 when
	// the budget is one speaker.
	embeddings := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{-1, 0, 0},
	}
	for i, emb := range embeddings {
		got := c.Assign(emb, int64(i*1000), int64(i*1000+500))
		if got != 0 {
			t.Errorf("Assign(%d) = %d, want 0", i, got)
		}
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
}

func TestClusterer_ThresholdSplitsSpeakers(t *testing.T) {
	c := NewClusterer(5, 0.5)

	first := c.Assign([]float32{1, 0, 0}, 0, 500)
	second := c.Assign([]float32{0, 1, 0}, 1000, 1500)
	third := c.Assign([]float32{0.9, 0.1, 0}, 2000, 2500)

	if first != 0 {
		t.Errorf("first = %d, want 0", first)
	}
	if second != 1 {
		t.Errorf("second = %d, want 1 (below threshold founds a cluster)", second)
	}
	if third != 0 {
		t.Errorf("third = %d, want 0 (similar to the first speaker)", third)
	}
	if c.Count() != 2 {
		t.Errorf("Count() = %d, want 2", c.Count())
	}
}

func TestClusterer_BudgetForcesBestMatch(t *testing.T) {
	c := NewClusterer(2, 0.9)

	c.Assign([]float32{1, 0, 0}, 0, 500)
	c.Assign([]float32{0, 1, 0}, 1000, 1500)

	// Budget is full: this dissimilar embedding must join its best
	// match even though the similarity is below the threshold.
	got := c.Assign([]float32{0.6, 0.4, 0}, 2000, 2500)
	if got != 0 {
		t.Errorf("Assign over budget = %d, want 0", got)
	}
	if c.Count() != 2 {
		t.Errorf("Count() = %d, want 2", c.Count())
	}
}

func TestClusterer_TemporalTieBreak(t *testing.T) {
	// Two clusters with identical centroids: the similarity is exactly
	// tied, so the span must join the cluster that spoke more recently.
	c := &Clusterer{
		maxSpeakers: 2,
		threshold:   0.5,
		clusters: []*cluster{
			{centroid: []float32{1, 0, 0}, count: 1, lastEndMS: 1000},
			{centroid: []float32{1, 0, 0}, count: 1, lastEndMS: 9500},
		},
	}

	got := c.Assign([]float32{1, 0, 0}, 10000, 10500)
	if got != 1 {
		t.Errorf("Assign = %d, want 1 (closer in time)", got)
	}

	// Same setup, but span adjacent to the first cluster.
	c = &Clusterer{
		maxSpeakers: 2,
		threshold:   0.5,
		clusters: []*cluster{
			{centroid: []float32{1, 0, 0}, count: 1, lastEndMS: 1000},
			{centroid: []float32{1, 0, 0}, count: 1, lastEndMS: 9500},
		},
	}
	got = c.Assign([]float32{1, 0, 0}, 1200, 1700)
	if got != 0 {
		t.Errorf("Assign = %d, want 0 (closer in time)", got)
	}
}

func TestClusterer_CentroidAbsorb(t *testing.T) {
	c := NewClusterer(5, 0.5)
	c.Assign([]float32{1, 0}, 0, 500)
	c.Assign([]float32{0.8, 0.6}, 1000, 1500) // similar enough to join

	centroid := c.clusters[0].centroid
	want := []float32{0.9, 0.3}
	for i := range want {
		if math.Abs(float64(centroid[i]-want[i])) > 1e-5 {
			t.Errorf("centroid[%d] = %f, want %f", i, centroid[i], want[i])
		}
	}
	if c.clusters[0].count != 2 {
		t.Errorf("count = %d, want 2", c.clusters[0].count)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"shorter prefix", []float32{1, 0, 9}, []float32{1, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}
