// Package confidence implements stage 17: per-domain t_group aggregation of
// classifier probabilities, a minimum-probability filter, and a quality
// label derived from how tightly the surviving t_groups cluster near the
// domain's best probability.
package confidence

import "strings"

// minProbability is stage 17's survival floor: a domain's best probability
// for a given t_group must reach this to be considered at all.
const minProbability = 0.60

// similarMargin is how close to the domain's best probability a t_group
// must be to join the "similar" set used for quality labeling.
const similarMargin = 0.05

// Prediction is one candidate classifier output feeding into stage 17.
type Prediction struct {
	TGroup      string
	TemplateID  string
	Probability float64
}

// Quality is stage 17's assignment-confidence label.
type Quality string

const (
	Good Quality = "good"
	OK   Quality = "ok"
	Bad  Quality = "bad"
)

// Confident is one surviving t_group for a domain, with its quality label.
type Confident struct {
	TGroup      string
	TemplateID  string
	Probability float64
	Quality     Quality
}

// Filter groups predictions by t_group, keeps the best probability per
// t_group, drops t_groups below minProbability, and labels every survivor's
// quality relative to the domain's overall best (spec.md §4.M). Returns nil
// if no t_group survives.
func Filter(preds []Prediction) []Confident {
	best := bestPerTGroup(preds)
	var survivors []Confident
	for tg, p := range best {
		if p.Probability < minProbability {
			continue
		}
		survivors = append(survivors, Confident{TGroup: tg, TemplateID: p.TemplateID, Probability: p.Probability})
	}
	if len(survivors) == 0 {
		return nil
	}

	pStar := survivors[0].Probability
	for _, s := range survivors {
		if s.Probability > pStar {
			pStar = s.Probability
		}
	}

	var similar []Confident
	for _, s := range survivors {
		if s.Probability >= pStar-similarMargin {
			similar = append(similar, s)
		}
	}
	quality := labelQuality(similar)

	for i := range survivors {
		survivors[i].Quality = quality
	}
	return survivors
}

func bestPerTGroup(preds []Prediction) map[string]Prediction {
	best := make(map[string]Prediction)
	for _, p := range preds {
		cur, ok := best[p.TGroup]
		if !ok || p.Probability > cur.Probability {
			best[p.TGroup] = p
		}
	}
	return best
}

func labelQuality(similar []Confident) Quality {
	if len(similar) == 1 {
		return Good
	}
	hgroup := hGroup(similar[0].TGroup)
	for _, s := range similar[1:] {
		if hGroup(s.TGroup) != hgroup {
			return Bad
		}
	}
	return OK
}

func hGroup(tgroup string) string {
	parts := strings.SplitN(tgroup, ".", 3)
	if len(parts) < 2 {
		return tgroup
	}
	return parts[0] + "." + parts[1]
}
