package analysis

// Similarity weights. They sum to 1 so a perfect match scores 1.0.
const (
	distanceWeight  = 0.5
	elevationWeight = 0.3
	heartrateWeight = 0.2
)

// Sub-score slopes: a relative difference of 1/slope zeroes the sub-score.
const (
	distanceSlope  = 5.0
	elevationSlope = 2.0
	heartrateSlope = 3.0
)

// Flat-target elevation handling: when the target has no climbing, a
// candidate with more than flatElevationThreshold meters is penalised.
const (
	flatElevationThreshold = 50.0
	flatElevationPenalty   = 0.5
)
