package models

import (
	"testing"
	"time"

	"github.com/alpacahq/gofilings/models/enum"
	"github.com/alpacahq/gofilings/utils/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitFixture() CorporateAction {
	return CorporateAction{
		ActionType: enum.ReverseSplit,
		Issuer:     IssuerRef{Name: "Acme Corp", CIK: "0001234567"},
		Security:   SecurityRef{Ticker: "ACME", ExchangeMIC: "XNAS"},
		AnnounceDate:  date.Ptr(date.New(2025, time.September, 1)),
		EffectiveDate: date.Ptr(date.New(2025, time.September, 30)),
		Terms:      Terms{Ratio: &Ratio{1, 10}},
		Confidence: 0.92,
		Status:     enum.Announced,
		Sources: []SourceInfo{{
			Source:        enum.SECEdgar,
			DocType:       enum.EightK,
			URL:           "https://www.sec.gov/Archives/edgar/data/1234567/000123456725000001/acme8k.htm",
			ReferenceID:   "0001234567-25-000001",
			RetrievalTime: time.Date(2025, time.September, 2, 12, 0, 0, 0, time.UTC),
		}},
	}
}

func dividendFixture() CorporateAction {
	return CorporateAction{
		ActionType: enum.CashDividend,
		Issuer:     IssuerRef{Name: "Acme Corp", CIK: "0001234567"},
		Security:   SecurityRef{Ticker: "ACME"},
		ExDate:     date.Ptr(date.New(2025, time.October, 10)),
		RecordDate: date.Ptr(date.New(2025, time.October, 13)),
		PayDate:    date.Ptr(date.New(2025, time.October, 27)),
		Terms: Terms{CashPerShare: &Money{
			Currency: "USD",
			Amount:   decimal.New(25, -2),
		}},
		Confidence: 0.99,
		Sources: []SourceInfo{{
			Source:      enum.SECEdgar,
			ReferenceID: "0001234567-25-000002",
		}},
	}
}

func TestNewCorporateActionDerivesDeterministicID(t *testing.T) {
	a, err := NewCorporateAction(splitFixture())
	require.Nil(t, err)
	b, err := NewCorporateAction(splitFixture())
	require.Nil(t, err)

	assert.NotEmpty(t, a.EventID)
	assert.Equal(t, a.EventID, b.EventID)

	// identity ignores descriptive fields
	descr := splitFixture()
	descr.Notes = "ten-to-one reverse split"
	descr.Confidence = 0.5
	c, err := NewCorporateAction(descr)
	require.Nil(t, err)
	assert.Equal(t, a.EventID, c.EventID)

	// but responds to identifying content
	shifted := splitFixture()
	shifted.EffectiveDate = date.Ptr(date.New(2025, time.October, 15))
	d, err := NewCorporateAction(shifted)
	require.Nil(t, err)
	assert.NotEqual(t, a.EventID, d.EventID)

	retyped := splitFixture()
	retyped.ActionType = enum.ForwardSplit
	retyped.Terms.Ratio = &Ratio{10, 1}
	e, err := NewCorporateAction(retyped)
	require.Nil(t, err)
	assert.NotEqual(t, a.EventID, e.EventID)
}

func TestNewCorporateActionExplicitIDWins(t *testing.T) {
	in := splitFixture()
	in.EventID = "11111111-2222-3333-4444-555555555555"
	out, err := NewCorporateAction(in)
	require.Nil(t, err)
	assert.Equal(t, in.EventID, out.EventID)
}

func TestNewCorporateActionNormalizesTicker(t *testing.T) {
	in := splitFixture()
	in.Security.Ticker = "acme"
	out, err := NewCorporateAction(in)
	require.Nil(t, err)
	assert.Equal(t, "ACME", out.Security.Ticker)

	upper, err := NewCorporateAction(splitFixture())
	require.Nil(t, err)
	assert.Equal(t, upper.EventID, out.EventID)
}

func TestValidateRejectsBadRecords(t *testing.T) {
	bad := splitFixture()
	bad.ActionType = "stock_split"
	_, err := NewCorporateAction(bad)
	assert.NotNil(t, err)

	bad = splitFixture()
	bad.Confidence = 1.2
	_, err = NewCorporateAction(bad)
	assert.NotNil(t, err)

	// effective before announce
	bad = splitFixture()
	bad.EffectiveDate = date.Ptr(date.New(2025, time.August, 1))
	_, err = NewCorporateAction(bad)
	assert.NotNil(t, err)

	// pay before record
	bad = dividendFixture()
	bad.PayDate = date.Ptr(date.New(2025, time.October, 1))
	_, err = NewCorporateAction(bad)
	assert.NotNil(t, err)

	// split without ratio
	bad = splitFixture()
	bad.Terms = Terms{}
	_, err = NewCorporateAction(bad)
	assert.NotNil(t, err)

	// dividend without cash
	bad = dividendFixture()
	bad.Terms = Terms{}
	_, err = NewCorporateAction(bad)
	assert.NotNil(t, err)

	// provenance pointing past the source list
	bad = splitFixture()
	bad.Provenance = []FieldProvenance{{FieldName: "effective_date", SourceIndex: 3}}
	_, err = NewCorporateAction(bad)
	assert.NotNil(t, err)
}

func TestMergerTermsViaConsiderationLegs(t *testing.T) {
	in := CorporateAction{
		ActionType: enum.MergerCashStock,
		Issuer:     IssuerRef{Name: "Target Inc"},
		Security:   SecurityRef{Ticker: "TGT.X"},
		Terms: Terms{Consideration: []ConsiderationLeg{
			{Type: enum.CashLeg, CashPerShare: &Money{Currency: "USD", Amount: decimal.New(1500, -2)}},
			{Type: enum.StockLeg, StockRatio: &Ratio{1, 4}, StockSecurity: &SecurityRef{Ticker: "ACQ"}},
		}},
		Confidence: 0.8,
		Sources:    []SourceInfo{{Source: enum.SECEdgar, ReferenceID: "0000000000-25-000009"}},
	}
	out, err := NewCorporateAction(in)
	require.Nil(t, err)
	assert.NotEmpty(t, out.EventID)

	// dropping the stock leg breaks the cash+stock requirement
	in.Terms.Consideration = in.Terms.Consideration[:1]
	_, err = NewCorporateAction(in)
	assert.NotNil(t, err)
}

func TestWithMethodsPreserveIdentityAndParent(t *testing.T) {
	orig, err := NewCorporateAction(dividendFixture())
	require.Nil(t, err)

	eff := date.New(2025, time.October, 10)
	derived, err := orig.WithEffectiveDate(eff)
	require.Nil(t, err)
	assert.Equal(t, orig.EventID, derived.EventID)
	assert.True(t, derived.EffectiveDate.Equal(eff))
	assert.Nil(t, orig.EffectiveDate)

	statd, err := derived.WithStatus(enum.Effective)
	require.Nil(t, err)
	assert.Equal(t, enum.Effective, statd.Status)
	assert.NotEqual(t, enum.Effective, derived.Status)

	patched, err := orig.WithExtras(Extras{ExtrasPrimaryTicker: "ACME"})
	require.Nil(t, err)
	assert.Equal(t, "ACME", patched.Extras[ExtrasPrimaryTicker])
	assert.Nil(t, orig.Extras)

	cited, err := orig.WithSource(SourceInfo{Source: enum.Nasdaq, URL: "https://listingcenter.nasdaq.com/notice/123"})
	require.Nil(t, err)
	assert.Len(t, cited.Sources, 2)
	assert.Len(t, orig.Sources, 1)
	assert.Equal(t, orig.EventID, cited.EventID)
}

func TestWithMethodsRevalidate(t *testing.T) {
	orig, err := NewCorporateAction(splitFixture())
	require.Nil(t, err)

	// moving effective before announce must fail and leave the parent alone
	_, err = orig.WithEffectiveDate(date.New(2025, time.July, 1))
	assert.NotNil(t, err)
	assert.True(t, orig.EffectiveDate.Equal(date.New(2025, time.September, 30)))

	_, err = orig.WithProvenance(FieldProvenance{FieldName: "ratio", SourceIndex: 99})
	assert.NotNil(t, err)
}

func TestRowRoundTrip(t *testing.T) {
	orig, err := NewCorporateAction(splitFixture())
	require.Nil(t, err)

	row, err := orig.Row()
	require.Nil(t, err)
	assert.Equal(t, orig.EventID, row.EventID)
	assert.Equal(t, "ACME", row.Ticker)
	require.NotNil(t, row.RatioNum)
	assert.Equal(t, 1, *row.RatioNum)
	assert.Equal(t, 10, *row.RatioDen)

	back, err := row.Aggregate()
	require.Nil(t, err)
	assert.Equal(t, orig.EventID, back.EventID)
	assert.Equal(t, orig.ActionType, back.ActionType)
	assert.True(t, back.EffectiveDate.Equal(*orig.EffectiveDate))
	assert.Equal(t, orig.Terms.Ratio.String(), back.Terms.Ratio.String())
}
