// Package partition implements the domain partition engine (stage 13): the
// fixed probability tables, the combined per-pair probability, segment
// construction, greedy clustering, and the refinement passes (gap fill,
// overlap resolution, length filter) that turn a chain's residues into a
// set of near-disjoint structural domains.
package partition

// step is one (cutpoint, value) entry in a step-function lookup table. The
// tables below are read top-to-bottom: the first cutpoint the query value
// is <= (or >=, for the ascending tables) wins.
type step struct {
	cut   float64
	value float64
}

// distSteps is p_dist(d): distance in Angstroms -> base probability.
// Descending-distance cutpoints, matching the canonical bin edges; gaps
// between the published anchor values are filled with a smooth monotone
// interpolation (see DESIGN.md's Open Question decision on this table).
var distSteps = []step{
	{3, 0.95}, {6, 0.94}, {9, 0.93}, {12, 0.91}, {15, 0.89}, {18, 0.85},
	{21, 0.80}, {24, 0.75}, {27, 0.70}, {30, 0.65}, {36, 0.55}, {45, 0.45},
	{55, 0.35}, {70, 0.25}, {100, 0.18}, {120, 0.14}, {160, 0.10}, {200, 0.08},
}

const distDefault = 0.06

// pDist evaluates p_dist(d): the first cutpoint with d <= cut wins;
// beyond the last cutpoint, distDefault applies.
func pDist(d float64) float64 { return stepLookupLE(distSteps, d, distDefault) }

// paeSteps is p_pae(e): predicted aligned error in Angstroms -> probability.
var paeSteps = []step{
	{1, 0.97}, {2, 0.89}, {3, 0.77}, {4, 0.67}, {5, 0.61}, {8, 0.52},
	{10, 0.48}, {11, 0.44}, {20, 0.39}, {28, 0.16}, {40, 0.11},
}

const paeDefault = 0.08

func pPAE(e float64) float64 { return stepLookupLE(paeSteps, e, paeDefault) }

// hhSteps is p_hh(h): combined HH score (probability percentage plus
// multiplicity bonus, so it can exceed 100) -> probability. Ascending
// thresholds evaluated highest-first: the first cutpoint with h >= cut wins.
var hhSteps = []step{
	{180, 0.98}, {160, 0.94}, {140, 0.92}, {120, 0.88}, {110, 0.87}, {100, 0.81}, {50, 0.76},
}

const hhDefault = 0.50

func pHH(h float64) float64 { return stepLookupGE(hhSteps, h, hhDefault) }

// daliSteps is p_dali(z): combined DALI z-score (plus multiplicity bonus)
// -> probability. Ascending thresholds evaluated highest-first.
var daliSteps = []step{
	{35, 0.97}, {25, 0.93}, {20, 0.89}, {18, 0.85}, {16, 0.81}, {14, 0.77},
	{12, 0.73}, {11, 0.69}, {10, 0.65}, {9, 0.61}, {7, 0.57}, {6, 0.53}, {2, 0.50},
}

const daliDefault = 0.50

func pDali(z float64) float64 { return stepLookupGE(daliSteps, z, daliDefault) }

// stepLookupLE evaluates a descending step function: steps must be sorted
// by ascending cut; returns the value of the first step with v <= cut, or
// def if v exceeds every cutpoint.
func stepLookupLE(steps []step, v float64, def float64) float64 {
	for _, s := range steps {
		if v <= s.cut {
			return s.value
		}
	}
	return def
}

// stepLookupGE evaluates an ascending-threshold step function: steps must
// be sorted by descending cut; returns the value of the first step with
// v >= cut, or def if v is below every cutpoint.
func stepLookupGE(steps []step, v float64, def float64) float64 {
	for _, s := range steps {
		if v >= s.cut {
			return s.value
		}
	}
	return def
}
