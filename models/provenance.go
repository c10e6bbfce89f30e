package models

import (
	"fmt"
	"time"

	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
)

// SourceInfo records one document the aggregate was derived from. Rows
// are append-only in storage; repeated ingestion of the same logical
// filing updates the descriptive fields but never drops a citation.
type SourceInfo struct {
	Source  enum.SourceSystem `json:"source"`
	DocType enum.DocType      `json:"doc_type"`
	URL     string            `json:"source_url"`
	// official filing/announcement date if known
	FilingDate    *date.Date `json:"filing_date,omitempty"`
	RetrievalTime time.Time  `json:"retrieval_time"`
	// natural external id, e.g. an EDGAR accession number
	ReferenceID string `json:"reference_id,omitempty"`
	// SHA256 of the raw document bytes/text
	ContentSHA256 string `json:"content_sha256,omitempty"`
	// snippet around the extracted terms
	TextExcerpt string `json:"text_excerpt,omitempty"`
}

func (s SourceInfo) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("source system is required on a citation")
	}
	if s.ReferenceID == "" && s.URL == "" {
		return fmt.Errorf("citation needs a reference_id or a source_url")
	}
	return nil
}

// FieldProvenance traces one aggregate field back to the citation it was
// extracted from.
type FieldProvenance struct {
	FieldName string `json:"field_name"`
	// index into CorporateAction.Sources
	SourceIndex int `json:"source_index"`
	// e.g. the selector, page number, or regex used
	Note       string   `json:"note,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (p FieldProvenance) Validate() error {
	if p.FieldName == "" {
		return fmt.Errorf("provenance entry missing field name")
	}
	if p.SourceIndex < 0 {
		return fmt.Errorf("provenance source_index must not be negative")
	}
	if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 1) {
		return fmt.Errorf("provenance confidence must be between 0 and 1")
	}
	return nil
}
