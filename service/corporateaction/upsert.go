package corporateaction

import (
	"github.com/alpacahq/gofilings/models"
	"github.com/jinzhu/gorm"
)

// The parent upsert overwrites every business column so the latest
// pipeline pass wins, but created_at is left alone and updated_at comes
// from the database clock.
const upsertParentSQL = `
INSERT INTO corporate_actions (
	event_id, action_type, issuer_name, issuer_cik,
	isin, cusip, ticker, exchange_mic,
	announce_date, effective_date, ex_date, record_date, pay_date,
	ratio_num, ratio_den, cash_currency, cash_amount,
	status, confidence,
	extracted_fields_version, extraction_model, pipeline_version, notes,
	supersedes_event_id, details_json
) VALUES (
	?, ?, ?, ?,
	?, ?, ?, ?,
	?, ?, ?, ?, ?,
	?, ?, ?, ?,
	?, ?,
	?, ?, ?, ?,
	?, CAST(? AS JSONB)
)
ON CONFLICT (event_id) DO UPDATE SET
	action_type = EXCLUDED.action_type,
	issuer_name = EXCLUDED.issuer_name,
	issuer_cik = EXCLUDED.issuer_cik,
	isin = EXCLUDED.isin,
	cusip = EXCLUDED.cusip,
	ticker = EXCLUDED.ticker,
	exchange_mic = EXCLUDED.exchange_mic,
	announce_date = EXCLUDED.announce_date,
	effective_date = EXCLUDED.effective_date,
	ex_date = EXCLUDED.ex_date,
	record_date = EXCLUDED.record_date,
	pay_date = EXCLUDED.pay_date,
	ratio_num = EXCLUDED.ratio_num,
	ratio_den = EXCLUDED.ratio_den,
	cash_currency = EXCLUDED.cash_currency,
	cash_amount = EXCLUDED.cash_amount,
	status = EXCLUDED.status,
	confidence = EXCLUDED.confidence,
	extracted_fields_version = EXCLUDED.extracted_fields_version,
	extraction_model = EXCLUDED.extraction_model,
	pipeline_version = EXCLUDED.pipeline_version,
	notes = EXCLUDED.notes,
	supersedes_event_id = EXCLUDED.supersedes_event_id,
	details_json = EXCLUDED.details_json,
	updated_at = NOW()`

func upsertParent(tx *gorm.DB, row *models.CorporateActionRow) error {
	return tx.Exec(upsertParentSQL,
		row.EventID, row.ActionType, row.IssuerName, row.IssuerCIK,
		nullStr(row.ISIN), nullStr(row.CUSIP), nullStr(row.Ticker), nullStr(row.ExchangeMIC),
		row.AnnounceDate, row.EffectiveDate, row.ExDate, row.RecordDate, row.PayDate,
		row.RatioNum, row.RatioDen, nullStr(row.CashCurrency), row.CashAmount,
		nullStr(string(row.Status)), row.Confidence,
		nullStr(row.ExtractedFieldsVersion), nullStr(row.ExtractionModel),
		nullStr(row.PipelineVersion), nullStr(row.Notes),
		nullStr(row.SupersedesEventID), string(row.DetailsJSON),
	).Error
}

// Citations are append-only: rows merge on their natural key and are
// never deleted. Two partial unique indexes back the two key shapes, so
// the conflict target has to name the matching index predicate.
const mergeSourceByRefIDSQL = `
INSERT INTO corporate_action_sources (
	event_id, source, doc_type, source_url, filing_date,
	retrieval_time, reference_id, content_sha256, text_excerpt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (event_id, source, reference_id) WHERE reference_id IS NOT NULL
DO UPDATE SET
	doc_type = EXCLUDED.doc_type,
	source_url = EXCLUDED.source_url,
	filing_date = EXCLUDED.filing_date,
	retrieval_time = EXCLUDED.retrieval_time,
	content_sha256 = EXCLUDED.content_sha256,
	text_excerpt = EXCLUDED.text_excerpt`

const mergeSourceByURLSQL = `
INSERT INTO corporate_action_sources (
	event_id, source, doc_type, source_url, filing_date,
	retrieval_time, reference_id, content_sha256, text_excerpt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (event_id, source, source_url) WHERE reference_id IS NULL
DO UPDATE SET
	doc_type = EXCLUDED.doc_type,
	filing_date = EXCLUDED.filing_date,
	retrieval_time = EXCLUDED.retrieval_time,
	content_sha256 = EXCLUDED.content_sha256,
	text_excerpt = EXCLUDED.text_excerpt`

func mergeSources(tx *gorm.DB, ca *models.CorporateAction) error {
	for _, src := range ca.Sources {
		sql := mergeSourceByURLSQL
		var refID interface{}
		if src.ReferenceID != "" {
			sql = mergeSourceByRefIDSQL
			refID = src.ReferenceID
		}
		err := tx.Exec(sql,
			ca.EventID, src.Source, nullStr(string(src.DocType)), nullStr(src.URL),
			src.FilingDate, src.RetrievalTime, refID,
			nullStr(src.ContentSHA256), nullStr(src.TextExcerpt),
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

const insertLegSQL = `
INSERT INTO corporate_action_consideration_legs (
	event_id, type, cash_currency, cash_amount,
	stock_ratio_num, stock_ratio_den,
	stock_security_ticker, stock_security_exchange_mic
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func replaceConsiderationLegs(tx *gorm.DB, ca *models.CorporateAction) error {
	// clear even when no legs remain, for idempotency
	err := tx.Exec(
		`DELETE FROM corporate_action_consideration_legs WHERE event_id = ?`,
		ca.EventID).Error
	if err != nil {
		return err
	}

	for _, leg := range ca.Terms.Consideration {
		var cashCurrency, ticker, mic interface{}
		var cashAmount, ratioNum, ratioDen interface{}
		if leg.CashPerShare != nil {
			cashCurrency = leg.CashPerShare.Currency
			cashAmount = leg.CashPerShare.Amount
		}
		if leg.StockRatio != nil {
			ratioNum = leg.StockRatio.Numerator
			ratioDen = leg.StockRatio.Denominator
		}
		if leg.StockSecurity != nil {
			ticker = nullStr(leg.StockSecurity.Ticker)
			mic = nullStr(leg.StockSecurity.ExchangeMIC)
		}
		err := tx.Exec(insertLegSQL,
			ca.EventID, leg.Type, cashCurrency, cashAmount,
			ratioNum, ratioDen, ticker, mic,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

const insertProvenanceSQL = `
INSERT INTO corporate_action_provenance (
	event_id, field_name, source_index, note, confidence
) VALUES (?, ?, ?, ?, ?)`

func replaceProvenance(tx *gorm.DB, ca *models.CorporateAction) error {
	err := tx.Exec(
		`DELETE FROM corporate_action_provenance WHERE event_id = ?`,
		ca.EventID).Error
	if err != nil {
		return err
	}

	for _, prov := range ca.Provenance {
		err := tx.Exec(insertProvenanceSQL,
			ca.EventID, prov.FieldName, prov.SourceIndex,
			nullStr(prov.Note), prov.Confidence,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
