package models

import (
	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
)

// Extras is the free-form extension bag for pipeline facts that have not
// been promoted to first-class columns. The bag itself is open, but the
// keys below form a stable sub-schema that downstream consumers rely on.
type Extras map[string]interface{}

// Known extras keys.
const (
	// ranked []DateCandidate produced by the effective-date engine
	ExtrasDateCandidates = "effective_date_candidates"
	// the top-ranked DateCandidate, promoted or not
	ExtrasDateRecommendation = "effective_date_recommendation"
	// primary ticker chosen among an issuer's listed securities
	ExtrasPrimaryTicker = "primary_ticker"
	// every ticker listed for the issuer
	ExtrasAllTickers = "all_tickers"
	// tickers other than the primary
	ExtrasExtraTickers = "extra_tickers"
)

func (e Extras) clone() Extras {
	if e == nil {
		return nil
	}
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// DateCandidate is one piece of effective-date evidence. Exactly which
// fields are set depends on the kind: definitive and estimated carry Date,
// window carries StartDate/EndDate, relative carries RelativeTo and
// OffsetDays.
type DateCandidate struct {
	Kind enum.EvidenceKind `json:"kind"`
	Date *date.Date        `json:"date,omitempty"`

	StartDate *date.Date `json:"start_date,omitempty"`
	EndDate   *date.Date `json:"end_date,omitempty"`

	// short milestone label like "shareholder_approval"
	RelativeTo string `json:"relative_to,omitempty"`
	OffsetDays *int   `json:"offset_days,omitempty"`

	// short phrase like "effective on" or "expected in Q4 2025"
	Qualifier string `json:"qualifier,omitempty"`
	// supporting snippet from the filing
	Snippet string `json:"snippet,omitempty"`
	// which extraction pass produced it, e.g. "llm_primary", "llm_followup"
	Method     string  `json:"method,omitempty"`
	Confidence float64 `json:"confidence"`
	// index into CorporateAction.Sources, set by the pipeline
	SourceIndex *int `json:"source_index,omitempty"`
}

// Normalized folds unknown kinds down to relative and clamps nothing else;
// a candidate with garbage confidence is the extractor's bug to surface.
func (c DateCandidate) Normalized() DateCandidate {
	c.Kind = enum.NormalizeEvidenceKind(string(c.Kind))
	return c
}
