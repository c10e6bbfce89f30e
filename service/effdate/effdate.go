// Package effdate ranks effective-date evidence gathered from filings
// and decides when a candidate is strong enough to promote into the
// aggregate's effective_date field.
package effdate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/alpacahq/gofilings/models"
	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
	"github.com/alpacahq/gopaca/env"
)

// Policy controls promotion. Only a definitive candidate that carries a
// concrete date and meets MinConfidence is ever promoted; everything
// weaker stays a recommendation.
type Policy struct {
	MinConfidence float64
}

// DefaultPolicy reads the promotion threshold from
// LLM_DATE_MIN_CONFIDENCE (0.85 unless overridden).
func DefaultPolicy() Policy {
	p := Policy{MinConfidence: 0.85}
	if v := env.GetVar("LLM_DATE_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.MinConfidence = f
		}
	}
	return p
}

// Result is the outcome of one resolution pass. Ranked always carries
// every input candidate, normalized and ordered best first.
// Recommendation is the top-ranked candidate regardless of promotion;
// Promoted is non-nil only when a definitive candidate cleared the bar.
type Result struct {
	Promoted       *date.Date
	Recommendation *models.DateCandidate
	Ranked         []models.DateCandidate
}

// Resolve normalizes and ranks candidates by evidence kind, breaking
// ties by confidence, and applies the promotion policy. The input slice
// is not modified, and ties preserve input order so repeated passes over
// the same evidence stay stable.
func Resolve(candidates []models.DateCandidate, p Policy) Result {
	if len(candidates) == 0 {
		return Result{}
	}

	ranked := make([]models.DateCandidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.Normalized()
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].Kind.Rank(), ranked[j].Kind.Rank()
		if ri != rj {
			return ri > rj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	res := Result{Ranked: ranked}
	top := ranked[0]
	res.Recommendation = &top

	// promotion considers definitive evidence only; an estimated
	// candidate outranked by nothing still never writes the field
	for _, c := range ranked {
		if c.Kind != enum.Definitive {
			break
		}
		if c.Date != nil && c.Confidence >= p.MinConfidence {
			d := *c.Date
			res.Promoted = &d
			break
		}
	}
	return res
}

// Apply folds a resolution into the aggregate: the ranked list and the
// recommendation land in extras, and a promoted date is written to
// effective_date. Identity is carried forward by the With* derivations.
func Apply(ca *models.CorporateAction, res Result) (*models.CorporateAction, error) {
	if len(res.Ranked) == 0 {
		return ca, nil
	}

	extras := models.Extras{
		models.ExtrasDateCandidates: res.Ranked,
	}
	if res.Recommendation != nil {
		extras[models.ExtrasDateRecommendation] = *res.Recommendation
	}

	out, err := ca.WithExtras(extras)
	if err != nil {
		return nil, err
	}
	if res.Promoted != nil {
		return out.WithEffectiveDate(*res.Promoted)
	}
	return out, nil
}

// FormatRecommendation renders a candidate for operator-facing review
// queues, e.g. "2025-09-30 (llm_primary, 0.92)" or
// "within 60 days after shareholder_approval (llm_followup, 0.60)".
func FormatRecommendation(c models.DateCandidate) string {
	var what string
	switch {
	case c.Date != nil:
		what = c.Date.String()
	case c.StartDate != nil && c.EndDate != nil:
		what = fmt.Sprintf("%s to %s", c.StartDate.String(), c.EndDate.String())
	case c.RelativeTo != "" && c.OffsetDays != nil:
		what = fmt.Sprintf("within %d days after %s", *c.OffsetDays, c.RelativeTo)
	case c.Qualifier != "":
		what = c.Qualifier
	default:
		what = string(c.Kind)
	}
	method := c.Method
	if method == "" {
		method = "unknown"
	}
	return fmt.Sprintf("%s (%s, %.2f)", what, method, c.Confidence)
}
