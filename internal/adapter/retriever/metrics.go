package retriever

import (
	"math"
	"sort"
)

// Ranking quality measures used to grade result lists against judged
// queries. Ids are compared by equality; k truncates the retrieved list.

func PrecisionAtK(retrieved, relevant []string, k int) float64 {
	retrieved = topK(retrieved, k)
	if len(retrieved) == 0 {
		return 0
	}
	relevantSet := toSet(relevant)
	hits := 0
	for _, r := range retrieved {
		if _, ok := relevantSet[r]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(retrieved))
}

func RecallAtK(retrieved, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	relevantSet := toSet(relevant)
	hits := 0
	for _, r := range topK(retrieved, k) {
		if _, ok := relevantSet[r]; ok {
			hits++
			delete(relevantSet, r)
		}
	}
	return float64(hits) / float64(len(relevant))
}

// ReciprocalRank is 1/rank of the first relevant id, or 0 when none appears.
func ReciprocalRank(retrieved []string, relevant ...string) float64 {
	relevantSet := toSet(relevant)
	for i, r := range retrieved {
		if _, ok := relevantSet[r]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

func NDCG(scores, ideal []float64) float64 {
	dcg := calculateDCG(scores)
	idcg := calculateDCG(ideal)
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// GradedNDCG scores a retrieved id list against graded judgments. Unjudged
// ids count as zero.
func GradedNDCG(retrieved []string, grades map[string]float64, k int) float64 {
	retrieved = topK(retrieved, k)
	scores := make([]float64, len(retrieved))
	for i, id := range retrieved {
		scores[i] = grades[id]
	}
	ideal := make([]float64, 0, len(grades))
	for _, g := range grades {
		ideal = append(ideal, g)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	return NDCG(scores, topKFloat(ideal, k))
}

func calculateDCG(scores []float64) float64 {
	dcg := 0.0
	for i, score := range scores {
		dcg += score / math.Log2(float64(i+2))
	}
	return dcg
}

func topK(s []string, k int) []string {
	if k > 0 && len(s) > k {
		return s[:k]
	}
	return s
}

func topKFloat(s []float64, k int) []float64 {
	if k > 0 && len(s) > k {
		return s[:k]
	}
	return s
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
