package models

import (
	"fmt"
	"time"

	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
)

// CorporateAction is the aggregate root: one logical corporate action
// event normalized out of one or more regulatory filings.
//
// Aggregates are immutable values. Enrichment passes derive new values
// through the With* methods, which deep-copy, re-validate, and always
// carry the original EventID forward; an event's identity is computed at
// most once, when the aggregate is first built without one.
type CorporateAction struct {
	// deterministic UUIDv5 derived from content when not provided
	EventID string `json:"event_id,omitempty"`

	ActionType enum.ActionType `json:"action_type"`

	Issuer   IssuerRef   `json:"issuer"`
	Security SecurityRef `json:"security"`

	AnnounceDate  *date.Date `json:"announce_date,omitempty"`
	EffectiveDate *date.Date `json:"effective_date,omitempty"`
	ExDate        *date.Date `json:"ex_date,omitempty"`
	RecordDate    *date.Date `json:"record_date,omitempty"`
	PayDate       *date.Date `json:"pay_date,omitempty"`

	Terms Terms `json:"terms"`

	Sources    []SourceInfo      `json:"sources,omitempty"`
	Provenance []FieldProvenance `json:"provenance,omitempty"`

	Confidence float64     `json:"confidence"`
	Status     enum.Status `json:"status,omitempty"`

	ExtractedFieldsVersion string `json:"extracted_fields_version,omitempty"`
	ExtractionModel        string `json:"extraction_model,omitempty"`
	PipelineVersion        string `json:"pipeline_version,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// set when this record supersedes a prior event
	SupersedesEventID string `json:"supersedes_event_id,omitempty"`

	Notes string `json:"notes,omitempty"`

	Extras Extras `json:"extras,omitempty"`
}

// NewCorporateAction validates the given record against every model
// invariant, stamps timestamps, and derives the deterministic event id
// when one was not supplied. The input is never mutated; on any
// validation failure no aggregate is returned.
func NewCorporateAction(ca CorporateAction) (*CorporateAction, error) {
	out := ca.clone()
	out.Security = out.Security.Normalized()

	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	// an explicitly supplied identity always wins
	if out.EventID == "" {
		out.EventID = out.deriveEventID()
	}
	return &out, nil
}

// Validate checks every cross-field invariant. It does not compute or
// compare identities.
func (ca CorporateAction) Validate() error {
	if !enum.ValidActionType(ca.ActionType) {
		return fmt.Errorf("unknown action_type %q", ca.ActionType)
	}
	if ca.Confidence < 0 || ca.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", ca.Confidence)
	}
	if err := ca.Issuer.Validate(); err != nil {
		return err
	}
	if err := ca.Security.Validate(); err != nil {
		return err
	}
	if err := ca.Terms.Validate(); err != nil {
		return err
	}
	for _, src := range ca.Sources {
		if err := src.Validate(); err != nil {
			return err
		}
	}
	for _, prov := range ca.Provenance {
		if err := prov.Validate(); err != nil {
			return err
		}
		if prov.SourceIndex >= len(ca.Sources) {
			return fmt.Errorf("provenance for %q points past the source list (index %d)",
				prov.FieldName, prov.SourceIndex)
		}
	}
	if err := ca.validateDates(); err != nil {
		return err
	}
	return ca.validateTermsCoherency()
}

// date ordering is checked without business calendars; ex vs record is
// deliberately left unchecked because regional rules differ
func (ca CorporateAction) validateDates() error {
	if ca.AnnounceDate != nil && ca.EffectiveDate != nil &&
		ca.AnnounceDate.After(*ca.EffectiveDate) {
		return fmt.Errorf("effective_date cannot be before announce_date")
	}
	if ca.RecordDate != nil && ca.PayDate != nil &&
		ca.RecordDate.After(*ca.PayDate) {
		return fmt.Errorf("pay_date cannot be before record_date")
	}
	return nil
}

func (ca CorporateAction) validateTermsCoherency() error {
	if ca.ActionType.RequiresRatio() && !ca.Terms.HasRatio() {
		return fmt.Errorf("%s requires a ratio in terms or a stock consideration leg", ca.ActionType)
	}
	if ca.ActionType.RequiresCash() && !ca.Terms.HasCash() {
		return fmt.Errorf("%s requires cash_per_share in terms or a cash consideration leg", ca.ActionType)
	}
	if ca.ActionType.RequiresStockRatio() && !ca.Terms.HasRatio() {
		return fmt.Errorf("%s requires a stock ratio in terms or a consideration leg", ca.ActionType)
	}
	return nil
}

// WithEffectiveDate derives a copy carrying the given effective date. The
// copy keeps the original identity and refreshes UpdatedAt.
func (ca CorporateAction) WithEffectiveDate(d date.Date) (*CorporateAction, error) {
	out := ca.clone()
	out.EffectiveDate = date.Ptr(d)
	return out.revalidated()
}

// WithStatus derives a copy carrying the given lifecycle status.
func (ca CorporateAction) WithStatus(s enum.Status) (*CorporateAction, error) {
	out := ca.clone()
	out.Status = s
	return out.revalidated()
}

// WithExtras derives a copy whose extras bag has the given entries merged
// in (patch wins on key collision).
func (ca CorporateAction) WithExtras(patch Extras) (*CorporateAction, error) {
	out := ca.clone()
	if out.Extras == nil {
		out.Extras = make(Extras, len(patch))
	}
	for k, v := range patch {
		out.Extras[k] = v
	}
	return out.revalidated()
}

// WithSource derives a copy with one more citation appended.
func (ca CorporateAction) WithSource(src SourceInfo) (*CorporateAction, error) {
	out := ca.clone()
	out.Sources = append(out.Sources, src)
	return out.revalidated()
}

// WithProvenance derives a copy with one more field-provenance note.
func (ca CorporateAction) WithProvenance(prov FieldProvenance) (*CorporateAction, error) {
	out := ca.clone()
	out.Provenance = append(out.Provenance, prov)
	return out.revalidated()
}

func (ca CorporateAction) revalidated() (*CorporateAction, error) {
	if err := ca.Validate(); err != nil {
		return nil, err
	}
	ca.UpdatedAt = time.Now().UTC()
	return &ca, nil
}

// clone deep-copies the aggregate so derived values never share slices,
// maps, or pointed-to dates with their parent.
func (ca CorporateAction) clone() CorporateAction {
	out := ca

	out.AnnounceDate = cloneDate(ca.AnnounceDate)
	out.EffectiveDate = cloneDate(ca.EffectiveDate)
	out.ExDate = cloneDate(ca.ExDate)
	out.RecordDate = cloneDate(ca.RecordDate)
	out.PayDate = cloneDate(ca.PayDate)

	out.Terms = ca.Terms.clone()

	if ca.Sources != nil {
		out.Sources = make([]SourceInfo, len(ca.Sources))
		for i, s := range ca.Sources {
			s.FilingDate = cloneDate(s.FilingDate)
			out.Sources[i] = s
		}
	}
	if ca.Provenance != nil {
		out.Provenance = make([]FieldProvenance, len(ca.Provenance))
		for i, p := range ca.Provenance {
			if p.Confidence != nil {
				c := *p.Confidence
				p.Confidence = &c
			}
			out.Provenance[i] = p
		}
	}
	out.Extras = ca.Extras.clone()
	return out
}

func (t Terms) clone() Terms {
	out := t
	if t.Ratio != nil {
		r := *t.Ratio
		out.Ratio = &r
	}
	if t.CashPerShare != nil {
		m := *t.CashPerShare
		out.CashPerShare = &m
	}
	if t.Consideration != nil {
		out.Consideration = make([]ConsiderationLeg, len(t.Consideration))
		for i, leg := range t.Consideration {
			if leg.CashPerShare != nil {
				m := *leg.CashPerShare
				leg.CashPerShare = &m
			}
			if leg.StockRatio != nil {
				r := *leg.StockRatio
				leg.StockRatio = &r
			}
			if leg.StockSecurity != nil {
				s := *leg.StockSecurity
				leg.StockSecurity = &s
			}
			out.Consideration[i] = leg
		}
	}
	return out
}

func cloneDate(d *date.Date) *date.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
