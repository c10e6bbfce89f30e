package models

import (
	"encoding/json"
	"time"

	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
	"github.com/shopspring/decimal"
)

// CorporateActionRow is the parent-table shape of an aggregate: every
// scalar business field flattened to a column, plus the full JSON
// snapshot. The upsert path writes it with raw SQL; gorm uses this
// struct for reads and for AutoMigrate.
type CorporateActionRow struct {
	EventID    string          `json:"event_id" gorm:"column:event_id;primary_key" sql:"type:text"`
	ActionType enum.ActionType `json:"action_type" gorm:"not null" sql:"type:text"`

	IssuerName string `json:"issuer_name" sql:"type:text"`
	IssuerCIK  string `json:"issuer_cik" gorm:"column:issuer_cik" sql:"type:char(10)"`

	ISIN        string `json:"isin" gorm:"column:isin" sql:"type:char(12)"`
	CUSIP       string `json:"cusip" gorm:"column:cusip" sql:"type:char(9)"`
	Ticker      string `json:"ticker" gorm:"index:idx_ca_ticker_effdate" sql:"type:text"`
	ExchangeMIC string `json:"exchange_mic" gorm:"column:exchange_mic;index:idx_ca_exchange" sql:"type:char(4)"`

	AnnounceDate  *date.Date `json:"announce_date" sql:"type:date"`
	EffectiveDate *date.Date `json:"effective_date" gorm:"index:idx_ca_ticker_effdate" sql:"type:date"`
	ExDate        *date.Date `json:"ex_date" sql:"type:date"`
	RecordDate    *date.Date `json:"record_date" sql:"type:date"`
	PayDate       *date.Date `json:"pay_date" sql:"type:date"`

	RatioNum     *int             `json:"ratio_num"`
	RatioDen     *int             `json:"ratio_den"`
	CashCurrency string           `json:"cash_currency" sql:"type:char(3)"`
	CashAmount   *decimal.Decimal `json:"cash_amount" gorm:"type:decimal(18,6)"`

	Status     enum.Status `json:"status" sql:"type:text"`
	Confidence float64     `json:"confidence"`

	ExtractedFieldsVersion string `json:"extracted_fields_version" sql:"type:text"`
	ExtractionModel        string `json:"extraction_model" sql:"type:text"`
	PipelineVersion        string `json:"pipeline_version" sql:"type:text"`
	Notes                  string `json:"notes" sql:"type:text"`

	SupersedesEventID string `json:"supersedes_event_id" sql:"type:text"`

	DetailsJSON json.RawMessage `json:"details_json" gorm:"column:details_json" sql:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CorporateActionRow) TableName() string {
	return "corporate_actions"
}

// Row flattens the aggregate into its parent-table shape, serializing
// the whole value into the details_json snapshot.
func (ca *CorporateAction) Row() (*CorporateActionRow, error) {
	snapshot, err := json.Marshal(ca)
	if err != nil {
		return nil, err
	}

	row := &CorporateActionRow{
		EventID:     ca.EventID,
		ActionType:  ca.ActionType,
		IssuerName:  ca.Issuer.Name,
		IssuerCIK:   ca.Issuer.CIK,
		ISIN:        ca.Security.ISIN,
		CUSIP:       ca.Security.CUSIP,
		Ticker:      ca.Security.Ticker,
		ExchangeMIC: ca.Security.ExchangeMIC,

		AnnounceDate:  ca.AnnounceDate,
		EffectiveDate: ca.EffectiveDate,
		ExDate:        ca.ExDate,
		RecordDate:    ca.RecordDate,
		PayDate:       ca.PayDate,

		Status:     ca.Status,
		Confidence: ca.Confidence,

		ExtractedFieldsVersion: ca.ExtractedFieldsVersion,
		ExtractionModel:        ca.ExtractionModel,
		PipelineVersion:        ca.PipelineVersion,
		Notes:                  ca.Notes,
		SupersedesEventID:      ca.SupersedesEventID,

		DetailsJSON: snapshot,
	}

	if ca.Terms.Ratio != nil {
		num, den := ca.Terms.Ratio.Numerator, ca.Terms.Ratio.Denominator
		row.RatioNum, row.RatioDen = &num, &den
	}
	if ca.Terms.CashPerShare != nil {
		amount := ca.Terms.CashPerShare.Amount
		row.CashCurrency = ca.Terms.CashPerShare.Currency
		row.CashAmount = &amount
	}
	return row, nil
}

// Aggregate decodes the stored JSON snapshot back into the full value.
func (r *CorporateActionRow) Aggregate() (*CorporateAction, error) {
	var ca CorporateAction
	if err := json.Unmarshal(r.DetailsJSON, &ca); err != nil {
		return nil, err
	}
	return &ca, nil
}

// SourceRow is the append-only citation audit trail. Uniqueness is
// enforced by two partial indexes: (event_id, source, reference_id) when
// a natural reference id exists, else (event_id, source, source_url).
type SourceRow struct {
	ID            uint64            `json:"id" gorm:"primary_key"`
	EventID       string            `json:"event_id" gorm:"not null;index:idx_src_event_id" sql:"type:text references corporate_actions(event_id) on delete cascade"`
	Source        enum.SourceSystem `json:"source" gorm:"not null" sql:"type:text"`
	DocType       enum.DocType      `json:"doc_type" sql:"type:text"`
	SourceURL     string            `json:"source_url" sql:"type:text"`
	FilingDate    *date.Date        `json:"filing_date" sql:"type:date"`
	RetrievalTime time.Time         `json:"retrieval_time"`
	ReferenceID   *string           `json:"reference_id" sql:"type:text"`
	ContentSHA256 string            `json:"content_sha256" gorm:"column:content_sha256" sql:"type:text"`
	TextExcerpt   string            `json:"text_excerpt" sql:"type:text"`
}

func (SourceRow) TableName() string {
	return "corporate_action_sources"
}

// ConsiderationLegRow rows carry no independent history; each persist
// replaces the full set for the event.
type ConsiderationLegRow struct {
	ID                       uint64                 `json:"id" gorm:"primary_key"`
	EventID                  string                 `json:"event_id" gorm:"not null;index:idx_legs_event_id" sql:"type:text references corporate_actions(event_id) on delete cascade"`
	Type                     enum.ConsiderationType `json:"type" gorm:"not null" sql:"type:text"`
	CashCurrency             string                 `json:"cash_currency" sql:"type:char(3)"`
	CashAmount               *decimal.Decimal       `json:"cash_amount" gorm:"type:decimal(18,6)"`
	StockRatioNum            *int                   `json:"stock_ratio_num"`
	StockRatioDen            *int                   `json:"stock_ratio_den"`
	StockSecurityTicker      string                 `json:"stock_security_ticker" sql:"type:text"`
	StockSecurityExchangeMIC string                 `json:"stock_security_exchange_mic" gorm:"column:stock_security_exchange_mic" sql:"type:char(4)"`
}

func (ConsiderationLegRow) TableName() string {
	return "corporate_action_consideration_legs"
}

// ProvenanceRow mirrors FieldProvenance; replaced wholesale on persist.
type ProvenanceRow struct {
	ID          uint64   `json:"id" gorm:"primary_key"`
	EventID     string   `json:"event_id" gorm:"not null;index:idx_prov_event_id" sql:"type:text references corporate_actions(event_id) on delete cascade"`
	FieldName   string   `json:"field_name" sql:"type:text"`
	SourceIndex int      `json:"source_index"`
	Note        string   `json:"note" sql:"type:text"`
	Confidence  *float64 `json:"confidence"`
}

func (ProvenanceRow) TableName() string {
	return "corporate_action_provenance"
}
