package corporateaction

import (
	"sync"
	"testing"
	"time"

	"github.com/alpacahq/gofilings/dbtest"
	"github.com/alpacahq/gofilings/gferrors"
	"github.com/alpacahq/gofilings/models"
	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
	"github.com/alpacahq/gopaca/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CorporateActionTestSuite struct {
	dbtest.Suite
}

func TestCorporateActionTestSuite(t *testing.T) {
	suite.Run(t, new(CorporateActionTestSuite))
}

func (s *CorporateActionTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *CorporateActionTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func splitFixture() models.CorporateAction {
	return models.CorporateAction{
		ActionType:    enum.ReverseSplit,
		Issuer:        models.IssuerRef{Name: "Acme Corp", CIK: "0001234567"},
		Security:      models.SecurityRef{Ticker: "ACME", ExchangeMIC: "XNAS"},
		AnnounceDate:  date.Ptr(date.New(2025, time.September, 1)),
		EffectiveDate: date.Ptr(date.New(2025, time.September, 30)),
		Terms:         models.Terms{Ratio: &models.Ratio{Numerator: 1, Denominator: 10}},
		Confidence:    0.92,
		Status:        enum.Announced,
		Sources: []models.SourceInfo{{
			Source:        enum.SECEdgar,
			DocType:       enum.EightK,
			URL:           "https://www.sec.gov/Archives/edgar/data/1234567/000123456725000001/acme8k.htm",
			ReferenceID:   "0001234567-25-000001",
			RetrievalTime: time.Date(2025, time.September, 2, 12, 0, 0, 0, time.UTC),
		}},
		Provenance: []models.FieldProvenance{
			{FieldName: "effective_date", SourceIndex: 0, Note: "Item 5.03"},
			{FieldName: "ratio", SourceIndex: 0},
		},
	}
}

func (s *CorporateActionTestSuite) TestPersistIsIdempotent() {
	srv := corporateActionService{}

	ca := splitFixture()
	require.Nil(s.T(), srv.Persist(&ca))

	// find the stored row through the derived id
	built, err := models.NewCorporateAction(splitFixture())
	require.Nil(s.T(), err)

	read := corporateActionService{tx: db.DB()}
	got, err := read.Get(built.EventID)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.ReverseSplit, got.ActionType)
	assert.Equal(s.T(), "ACME", got.Security.Ticker)
	require.NotNil(s.T(), got.Terms.Ratio)
	assert.Equal(s.T(), "1-for-10", got.Terms.Ratio.String())

	// persisting the same logical event again converges on one row
	again := splitFixture()
	require.Nil(s.T(), srv.Persist(&again))

	var count int
	require.Nil(s.T(), db.DB().Model(&models.CorporateActionRow{}).
		Where("event_id = ?", built.EventID).Count(&count).Error)
	assert.Equal(s.T(), 1, count)

	srcs, err := read.Sources(built.EventID)
	require.Nil(s.T(), err)
	assert.Len(s.T(), srcs, 1)

	var provCount int
	require.Nil(s.T(), db.DB().Model(&models.ProvenanceRow{}).
		Where("event_id = ?", built.EventID).Count(&provCount).Error)
	assert.Equal(s.T(), 2, provCount)
}

func (s *CorporateActionTestSuite) TestPersistOverwritesDescriptiveFields() {
	srv := corporateActionService{}

	first := splitFixture()
	require.Nil(s.T(), srv.Persist(&first))

	second := splitFixture()
	second.Status = enum.Effective
	second.Confidence = 0.99
	second.Notes = "confirmed by exchange notice"
	require.Nil(s.T(), srv.Persist(&second))

	built, err := models.NewCorporateAction(splitFixture())
	require.Nil(s.T(), err)

	read := corporateActionService{tx: db.DB()}
	row, err := read.GetRow(built.EventID)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), enum.Effective, row.Status)
	assert.Equal(s.T(), 0.99, row.Confidence)
	assert.Equal(s.T(), "confirmed by exchange notice", row.Notes)
}

func (s *CorporateActionTestSuite) TestSourceMergeKeyedByURLWhenNoRefID() {
	srv := corporateActionService{}

	fixture := func() models.CorporateAction {
		ca := splitFixture()
		ca.Security = models.SecurityRef{Ticker: "URLCO"}
		ca.Sources = []models.SourceInfo{{
			Source: enum.Nasdaq,
			URL:    "https://listingcenter.nasdaq.com/notice/2025-123",
		}}
		return ca
	}

	ca := fixture()
	require.Nil(s.T(), srv.Persist(&ca))

	// same url again updates in place
	again := fixture()
	again.Sources[0].TextExcerpt = "1-for-10 reverse stock split"
	require.Nil(s.T(), srv.Persist(&again))

	built, err := models.NewCorporateAction(fixture())
	require.Nil(s.T(), err)

	read := corporateActionService{tx: db.DB()}
	srcs, err := read.Sources(built.EventID)
	require.Nil(s.T(), err)
	require.Len(s.T(), srcs, 1)
	assert.Equal(s.T(), "1-for-10 reverse stock split", srcs[0].TextExcerpt)
	assert.Nil(s.T(), srcs[0].ReferenceID)

	// a citation carrying a reference id is a distinct row
	withRef := fixture()
	withRef.Sources = []models.SourceInfo{{
		Source:      enum.Nasdaq,
		URL:         "https://listingcenter.nasdaq.com/notice/2025-123",
		ReferenceID: "NASDAQ-2025-123",
	}}
	require.Nil(s.T(), srv.Persist(&withRef))

	srcs, err = read.Sources(built.EventID)
	require.Nil(s.T(), err)
	assert.Len(s.T(), srcs, 2)
}

func (s *CorporateActionTestSuite) TestConsiderationLegsReplaced() {
	srv := corporateActionService{}

	merger := models.CorporateAction{
		ActionType: enum.MergerCashStock,
		Issuer:     models.IssuerRef{Name: "Target Inc", CIK: "0007654321"},
		Security:   models.SecurityRef{Ticker: "TGT.X"},
		Terms: models.Terms{Consideration: []models.ConsiderationLeg{
			{Type: enum.CashLeg, CashPerShare: &models.Money{Currency: "USD", Amount: decimal.New(1500, -2)}},
			{Type: enum.StockLeg, StockRatio: &models.Ratio{Numerator: 1, Denominator: 4},
				StockSecurity: &models.SecurityRef{Ticker: "ACQ"}},
		}},
		Confidence: 0.8,
		Sources:    []models.SourceInfo{{Source: enum.SECEdgar, ReferenceID: "0007654321-25-000003"}},
	}
	require.Nil(s.T(), srv.Persist(&merger))

	built, err := models.NewCorporateAction(merger)
	require.Nil(s.T(), err)

	var legs []models.ConsiderationLegRow
	require.Nil(s.T(), db.DB().Where("event_id = ?", built.EventID).Order("id").Find(&legs).Error)
	require.Len(s.T(), legs, 2)
	assert.Equal(s.T(), enum.CashLeg, legs[0].Type)
	assert.Equal(s.T(), "ACQ", legs[1].StockSecurityTicker)

	// re-persisting does not duplicate legs
	require.Nil(s.T(), srv.Persist(&merger))
	var legCount int
	require.Nil(s.T(), db.DB().Model(&models.ConsiderationLegRow{}).
		Where("event_id = ?", built.EventID).Count(&legCount).Error)
	assert.Equal(s.T(), 2, legCount)
}

func (s *CorporateActionTestSuite) TestPersistRejectsInvalidRecord() {
	srv := corporateActionService{}

	bad := splitFixture()
	bad.Terms = models.Terms{}
	err := srv.Persist(&bad)
	require.NotNil(s.T(), err)
	assert.True(s.T(), gferrors.IsValidation(err))
}

func (s *CorporateActionTestSuite) TestPersistBatchContinuesPastFailures() {
	srv := corporateActionService{}

	good1 := splitFixture()
	bad := splitFixture()
	bad.Confidence = 1.5
	good2 := splitFixture()
	good2.ActionType = enum.ForwardSplit
	good2.Issuer = models.IssuerRef{Name: "Batch Co", CIK: "0009998887"}
	good2.Security = models.SecurityRef{Ticker: "BTCH"}
	good2.Terms = models.Terms{Ratio: &models.Ratio{Numerator: 2, Denominator: 1}}

	n, err := srv.PersistBatch([]*models.CorporateAction{&good1, &bad, &good2})
	assert.Equal(s.T(), 2, n)
	require.NotNil(s.T(), err)
	assert.True(s.T(), gferrors.IsPersistence(err))

	n, err = srv.PersistBatch(nil)
	assert.Equal(s.T(), 0, n)
	assert.Nil(s.T(), err)
}

func (s *CorporateActionTestSuite) TestConcurrentPersistConverges() {
	srv := corporateActionService{}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ca := splitFixture()
			// upsert retries are not needed; last writer wins
			assert.Nil(s.T(), srv.Persist(&ca))
		}()
	}
	wg.Wait()

	built, err := models.NewCorporateAction(splitFixture())
	require.Nil(s.T(), err)

	var count int
	require.Nil(s.T(), db.DB().Model(&models.CorporateActionRow{}).
		Where("event_id = ?", built.EventID).Count(&count).Error)
	assert.Equal(s.T(), 1, count)
}

func (s *CorporateActionTestSuite) TestListFilters() {
	srv := corporateActionService{}

	div := models.CorporateAction{
		ActionType: enum.CashDividend,
		Issuer:     models.IssuerRef{Name: "Payer Co", CIK: "0002223334"},
		Security:   models.SecurityRef{Ticker: "PAYR"},
		ExDate:     date.Ptr(date.New(2025, time.October, 10)),
		PayDate:    date.Ptr(date.New(2025, time.October, 27)),
		Terms: models.Terms{CashPerShare: &models.Money{
			Currency: "USD", Amount: decimal.New(25, -2)}},
		Confidence: 0.97,
		Status:     enum.Announced,
		Sources:    []models.SourceInfo{{Source: enum.SECEdgar, ReferenceID: "0002223334-25-000008"}},
	}
	split := splitFixture()
	require.Nil(s.T(), srv.Persist(&div))
	require.Nil(s.T(), srv.Persist(&split))

	read := corporateActionService{tx: db.DB()}

	rows, err := read.List(ListQuery{Ticker: "PAYR"})
	require.Nil(s.T(), err)
	require.Len(s.T(), rows, 1)
	assert.Equal(s.T(), enum.CashDividend, rows[0].ActionType)

	rows, err = read.List(ListQuery{IssuerCIK: "0001234567", ActionType: string(enum.ReverseSplit)})
	require.Nil(s.T(), err)
	require.Len(s.T(), rows, 1)
	assert.Equal(s.T(), "ACME", rows[0].Ticker)

	rows, err = read.List(ListQuery{IssuerCIK: "0001234567", EffectiveFrom: "2025-09-01", EffectiveTo: "2025-12-31"})
	require.Nil(s.T(), err)
	assert.Len(s.T(), rows, 1)

	rows, err = read.List(ListQuery{Ticker: "UNKNOWN"})
	require.Nil(s.T(), err)
	assert.Empty(s.T(), rows)
}

func (s *CorporateActionTestSuite) TestGetNotFound() {
	read := corporateActionService{tx: db.DB()}
	_, err := read.Get("00000000-0000-0000-0000-000000000000")
	require.NotNil(s.T(), err)
	assert.True(s.T(), gferrors.IsNotFound(err))
}
