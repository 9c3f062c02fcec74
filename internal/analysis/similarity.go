package analysis

import (
	"math"
	"sort"

	"runbaseline/internal/store"
)

// ComparableRun is a candidate run with its similarity to the target.
type ComparableRun struct {
	store.Activity
	SimilarityScore float64
}

// Similarity scores how alike a candidate run is to the target, in [0, 1].
// Distance dominates, then elevation gain, then average heart rate.
// Identical runs score 1.0 and the score never increases as any
// difference grows.
func Similarity(target, candidate *store.Activity) float64 {
	distScore := math.Max(0, 1-distanceSlope*distanceDiff(target, candidate))
	elevScore := math.Max(0, 1-elevationSlope*elevationDiff(target, candidate))
	hrScore := math.Max(0, 1-heartrateSlope*heartrateDiff(target, candidate))

	return distanceWeight*distScore + elevationWeight*elevScore + heartrateWeight*hrScore
}

func distanceDiff(target, candidate *store.Activity) float64 {
	if target.Distance == 0 {
		// Zero-distance targets only match zero-distance candidates
		if candidate.Distance == 0 {
			return 0
		}
		return 1
	}
	return math.Abs(target.Distance-candidate.Distance) / target.Distance
}

func elevationDiff(target, candidate *store.Activity) float64 {
	if target.TotalElevationGain == 0 {
		if candidate.TotalElevationGain > flatElevationThreshold {
			return flatElevationPenalty
		}
		return 0
	}
	return math.Abs(target.TotalElevationGain-candidate.TotalElevationGain) / target.TotalElevationGain
}

// heartrateDiff is 0 when either side lacks HR so missing data is never penalised.
func heartrateDiff(target, candidate *store.Activity) float64 {
	if target.AverageHeartrate == nil || candidate.AverageHeartrate == nil || *target.AverageHeartrate == 0 {
		return 0
	}
	return math.Abs(*target.AverageHeartrate-*candidate.AverageHeartrate) / *target.AverageHeartrate
}

// RankComparables scores candidates against the target, keeps those scoring
// strictly above minScore, and returns at most limit of them best first.
// Equal scores keep their input order.
func RankComparables(target *store.Activity, candidates []store.Activity, minScore float64, limit int) []ComparableRun {
	ranked := make([]ComparableRun, 0, len(candidates))
	for i := range candidates {
		score := Similarity(target, &candidates[i])
		if score > minScore {
			ranked = append(ranked, ComparableRun{
				Activity:        candidates[i],
				SimilarityScore: score,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
