package diarization

import "math"

// similarityEpsilon is the floating-point tolerance within which two
// cluster similarities are considered tied.
const similarityEpsilon = 1e-4

// cluster tracks one speaker identity during clustering.
type cluster struct {
	centroid  []float32
	count     int
	lastEndMS int64
}

// Clusterer groups span embeddings into at most maxSpeakers identities.
//
// Spans are assigned in temporal order. While fewer than maxSpeakers
// clusters exist, a span joins the most similar cluster if its cosine
// similarity reaches the threshold, otherwise it founds a new cluster.
// Once the speaker budget is reached every span joins its best match
// regardless of threshold. When two clusters' similarities are within
// floating-point tolerance, the span joins the cluster whose previous
// segment ended closer in time (prefer speaker continuity).
type Clusterer struct {
	maxSpeakers int
	threshold   float32
	clusters    []*cluster
}

// NewClusterer creates a clusterer with the given speaker budget and
// similarity threshold.
func NewClusterer(maxSpeakers int, threshold float32) *Clusterer {
	if maxSpeakers < 1 {
		maxSpeakers = 1
	}
	return &Clusterer{
		maxSpeakers: maxSpeakers,
		threshold:   threshold,
	}
}

// Count returns the number of clusters formed so far.
func (c *Clusterer) Count() int {
	return len(c.clusters)
}

// Assign returns the cluster id for a span with the given embedding and
// time range. Ids are dense integers starting at 0.
func (c *Clusterer) Assign(embedding []float32, startMS, endMS int64) int {
	if len(c.clusters) == 0 {
		c.clusters = append(c.clusters, newCluster(embedding, endMS))
		return 0
	}

	best, sim := c.bestMatch(embedding, startMS)

	if len(c.clusters) >= c.maxSpeakers {
		c.clusters[best].touch(endMS)
		return best
	}

	if sim >= c.threshold {
		c.clusters[best].absorb(embedding, endMS)
		return best
	}

	c.clusters = append(c.clusters, newCluster(embedding, endMS))
	return len(c.clusters) - 1
}

// bestMatch finds the most similar cluster, breaking near-ties by
// temporal proximity of the cluster's previous segment.
func (c *Clusterer) bestMatch(embedding []float32, startMS int64) (int, float32) {
	best := 0
	bestSim := cosineSimilarity(embedding, c.clusters[0].centroid)

	for i := 1; i < len(c.clusters); i++ {
		sim := cosineSimilarity(embedding, c.clusters[i].centroid)
		switch {
		case sim > bestSim+similarityEpsilon:
			best, bestSim = i, sim
		case sim >= bestSim-similarityEpsilon:
			// Tie: prefer the cluster that spoke more recently.
			if temporalGap(c.clusters[i].lastEndMS, startMS) < temporalGap(c.clusters[best].lastEndMS, startMS) {
				best, bestSim = i, sim
			}
		}
	}
	return best, bestSim
}

func newCluster(embedding []float32, endMS int64) *cluster {
	centroid := make([]float32, len(embedding))
	copy(centroid, embedding)
	return &cluster{centroid: centroid, count: 1, lastEndMS: endMS}
}

// absorb folds an embedding into the running centroid mean.
func (cl *cluster) absorb(embedding []float32, endMS int64) {
	n := float32(cl.count)
	for i := range cl.centroid {
		if i < len(embedding) {
			cl.centroid[i] = (cl.centroid[i]*n + embedding[i]) / (n + 1)
		}
	}
	cl.count++
	cl.lastEndMS = endMS
}

func (cl *cluster) touch(endMS int64) {
	cl.lastEndMS = endMS
}

func temporalGap(lastEndMS, startMS int64) int64 {
	gap := startMS - lastEndMS
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shorter prefix; zero vectors
// yield 0.
func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
