// Package filings runs the ingestion pipeline: pull pending filings
// from a source index, extract normalized corporate action records from
// their text, resolve effective dates, enrich tickers through the CIK
// mapper, and persist the results.
//
// Document discovery and extraction are external concerns supplied by
// the embedding binary through Configure; the worker owns the
// orchestration, enrichment, and persistence only.
package filings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/alpacahq/gofilings/gferrors"
	"github.com/alpacahq/gofilings/gfreg"
	"github.com/alpacahq/gofilings/metrics"
	"github.com/alpacahq/gofilings/models"
	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/service/cikmap"
	"github.com/alpacahq/gofilings/service/effdate"
	"github.com/alpacahq/gofilings/utils/date"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
)

// Filing is one discovered document waiting for extraction.
type Filing struct {
	Source      enum.SourceSystem
	DocType     enum.DocType
	URL         string
	ReferenceID string
	CIK         string
	FilingDate  *date.Date
}

// Document is the fetched text of a filing.
type Document struct {
	Text        string
	RetrievedAt time.Time
}

// Extraction is what the extractor produced from one document: zero or
// more normalized records plus the effective-date evidence found.
type Extraction struct {
	Actions        []models.CorporateAction
	DateCandidates []models.DateCandidate
}

// IndexSource lists filings pending ingestion.
type IndexSource interface {
	NextBatch(limit int) ([]Filing, error)
}

// TextFetcher retrieves filing text.
type TextFetcher interface {
	Fetch(f Filing) (*Document, error)
}

// Extractor turns filing text into normalized records.
type Extractor interface {
	Extract(f Filing, doc *Document) (*Extraction, error)
}

// FollowupLocator finds the later filings (amendments, press releases)
// worth a second extraction pass when the primary document left the
// effective date unresolved.
type FollowupLocator interface {
	Locate(f Filing) ([]Filing, error)
}

// Config carries the external collaborators into the worker.
type Config struct {
	Index    IndexSource
	Fetcher  TextFetcher
	Extract  Extractor
	Followup FollowupLocator
}

var configured *Config

// Configure installs the collaborators. Work is a no-op until called.
func Configure(c Config) {
	configured = &c
}

type filingsWorker struct {
	index     IndexSource
	fetch     func(f Filing) (*Document, error)
	extract   func(f Filing, doc *Document) (*Extraction, error)
	followups func(f Filing) ([]Filing, error)
	persist   func(ca *models.CorporateAction) error
	mapper    cikmap.Mapper
	policy    effdate.Policy
	limit     int
}

func newWorker(c *Config) *filingsWorker {
	limit, err := strconv.Atoi(env.GetVar("FILINGS_BATCH_LIMIT"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	w := &filingsWorker{
		index:   c.Index,
		fetch:   c.Fetcher.Fetch,
		extract: c.Extract.Extract,
		persist: gfreg.Services.CorporateAction().Persist,
		mapper:  gfreg.Services.CIKMap(),
		policy:  effdate.DefaultPolicy(),
		limit:   limit,
	}
	if c.Followup != nil {
		w.followups = c.Followup.Locate
	}
	return w
}

// Work runs one ingestion pass.
func Work(workers ...*filingsWorker) {
	var worker *filingsWorker

	if len(workers) > 0 {
		worker = workers[0]
	} else {
		if configured == nil {
			log.Warn("filings worker not configured, skipping run")
			return
		}
		worker = newWorker(configured)
	}

	stats := PipelineStatsNow()

	filings, err := worker.index.NextBatch(worker.limit)
	if err != nil {
		log.Error("failed to list pending filings", "error", err)
		return
	}

	for _, f := range filings {
		stats.Processed++
		if err := worker.process(f, stats); err != nil {
			stats.Failed++
			log.Error(
				"filing ingestion failed",
				"source", f.Source,
				"reference_id", f.ReferenceID,
				"url", f.URL,
				"error", gferrors.Format(err))
		}
	}

	stats.FinishedAt = time.Now().UTC()
	metrics.Record(*stats)

	log.Info(
		"filings run complete",
		"processed", stats.Processed,
		"persisted", stats.Persisted,
		"failed", stats.Failed,
		"promoted_dates", stats.PromotedDates,
		"fill_rate", fmt.Sprintf("%.2f", stats.FillRate()))
}

// PipelineStatsNow returns a stats accumulator stamped with the run
// start time.
func PipelineStatsNow() *metrics.PipelineStats {
	return &metrics.PipelineStats{StartedAt: time.Now().UTC()}
}

func (w *filingsWorker) process(f Filing, stats *metrics.PipelineStats) error {
	doc, err := w.fetch(f)
	if err != nil {
		return err
	}

	extraction, err := w.extract(f, doc)
	if err != nil {
		return err
	}
	if extraction == nil || len(extraction.Actions) == 0 {
		return nil
	}

	candidates := extraction.DateCandidates
	res := effdate.Resolve(candidates, w.policy)

	// when the primary pass left the date unpromoted, chase followup
	// filings once and fold their evidence in
	if res.Promoted == nil && w.followups != nil {
		more, err := w.locateFollowupCandidates(f)
		if err != nil {
			log.Warn("followup pass failed", "reference_id", f.ReferenceID, "error", err)
		} else if len(more) > 0 {
			candidates = append(candidates, more...)
			res = effdate.Resolve(candidates, w.policy)
		}
	}

	for _, c := range res.Ranked {
		stats.CountCandidate(c)
	}
	if res.Promoted != nil {
		stats.PromotedDates++
	}

	for i := range extraction.Actions {
		ca, err := w.assemble(f, doc, extraction.Actions[i], res)
		if err != nil {
			return err
		}
		if err := w.persist(ca); err != nil {
			return err
		}
		stats.Persisted++
	}
	return nil
}

func (w *filingsWorker) locateFollowupCandidates(f Filing) ([]models.DateCandidate, error) {
	followups, err := w.followups(f)
	if err != nil {
		return nil, err
	}

	var out []models.DateCandidate
	for _, fu := range followups {
		doc, err := w.fetch(fu)
		if err != nil {
			return nil, err
		}
		extraction, err := w.extract(fu, doc)
		if err != nil {
			return nil, err
		}
		if extraction == nil {
			continue
		}
		for _, c := range extraction.DateCandidates {
			c.Method = "llm_followup"
			out = append(out, c)
		}
	}
	return out, nil
}

// assemble stitches the extracted record together with its citation,
// date resolution, and ticker enrichment before persistence.
func (w *filingsWorker) assemble(f Filing, doc *Document, ca models.CorporateAction, res effdate.Result) (*models.CorporateAction, error) {
	ca.Sources = append(ca.Sources, sourceInfo(f, doc))

	if ca.PipelineVersion == "" {
		ca.PipelineVersion = env.GetVar("PIPELINE_VERSION")
	}
	if ca.ExtractionModel == "" {
		ca.ExtractionModel = env.GetVar("EXTRACTION_MODEL")
	}

	built, err := models.NewCorporateAction(ca)
	if err != nil {
		return nil, gferrors.InvalidRecord.WithMsg(err.Error())
	}

	built, err = effdate.Apply(built, res)
	if err != nil {
		return nil, err
	}

	return w.enrichTickers(built)
}

// enrichTickers resolves the issuer's primary common-stock ticker from
// its CIK, filling the security ticker when extraction left it empty
// and recording the full listing picture in extras.
func (w *filingsWorker) enrichTickers(ca *models.CorporateAction) (*models.CorporateAction, error) {
	if ca.Issuer.CIK == "" || w.mapper == nil {
		return ca, nil
	}

	primary, ok := w.mapper.PrimaryTicker(ca.Issuer.CIK)
	if !ok {
		return ca, nil
	}

	all := w.mapper.AllTickers(ca.Issuer.CIK)
	extras := models.Extras{
		models.ExtrasPrimaryTicker: primary,
		models.ExtrasAllTickers:    all,
	}
	if len(all) > 1 {
		extras[models.ExtrasExtraTickers] = all[1:]
	}

	out, err := ca.WithExtras(extras)
	if err != nil {
		return nil, err
	}

	if out.Security.Ticker == "" {
		derived := *out
		derived.Security.Ticker = primary
		if exch, ok := w.mapper.Exchange(ca.Issuer.CIK, primary); ok && derived.Security.ExchangeMIC == "" {
			derived.Security.ExchangeMIC = micForExchange(exch)
		}
		return models.NewCorporateAction(derived)
	}
	return out, nil
}

// micForExchange maps the exchange labels carried by listing feeds to
// ISO 10383 MIC codes. Unknown labels map to empty rather than risking
// a bogus code in the record.
func micForExchange(exchange string) string {
	switch exchange {
	case "NASDAQ", "XNAS":
		return "XNAS"
	case "NYSE", "XNYS":
		return "XNYS"
	case "AMEX", "NYSE MKT", "XASE":
		return "XASE"
	case "ARCA", "NYSE ARCA", "ARCX":
		return "ARCX"
	case "BATS", "CBOE":
		return "BATS"
	default:
		return ""
	}
}

func sourceInfo(f Filing, doc *Document) models.SourceInfo {
	src := models.SourceInfo{
		Source:        f.Source,
		DocType:       f.DocType,
		URL:           f.URL,
		ReferenceID:   f.ReferenceID,
		FilingDate:    f.FilingDate,
		RetrievalTime: doc.RetrievedAt,
	}
	if doc.Text != "" {
		digest := sha256.Sum256([]byte(doc.Text))
		src.ContentSHA256 = hex.EncodeToString(digest[:])
	}
	return src
}
