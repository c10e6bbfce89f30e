package cikmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPrimarySkipsDerivatives(t *testing.T) {
	got := SelectPrimary([]Listing{
		{Ticker: "ABC-PB", Title: "Acme Banking Corp 6.5% Preferred Series B", Exchange: "NYSE"},
		{Ticker: "ABC", Title: "Acme Banking Corp Common Stock", Exchange: "NYSE"},
		{Ticker: "ABC-WS", Title: "Acme Banking Corp Warrants", Exchange: "NYSE"},
	})
	assert.Equal(t, "ABC", got)
}

func TestSelectPrimaryPrefersBareOverDualClass(t *testing.T) {
	got := SelectPrimary([]Listing{
		{Ticker: "XYZ-B", Title: "XYZ Holdings Class B Common Stock", Exchange: "NASDAQ"},
		{Ticker: "XYZ", Title: "XYZ Holdings Class A Common Stock", Exchange: "NASDAQ"},
	})
	assert.Equal(t, "XYZ", got)
}

func TestSelectPrimaryTitleVocabulary(t *testing.T) {
	// same plain tickers, only the titles differ
	got := SelectPrimary([]Listing{
		{Ticker: "ACMEN", Title: "Acme Corp 7.0% Senior Notes due 2031", Exchange: "NASDAQ"},
		{Ticker: "ACME", Title: "Acme Corp Common Stock", Exchange: "NASDAQ"},
	})
	assert.Equal(t, "ACME", got)

	got = SelectPrimary([]Listing{
		{Ticker: "ACMEU", Title: "Acme Acquisition Corp Units", Exchange: "NASDAQ"},
		{Ticker: "ACME", Title: "Acme Acquisition Corp Class A Common Stock", Exchange: "NASDAQ"},
	})
	assert.Equal(t, "ACME", got)
}

// One case per adjacent pair of score components, so the comparison
// order stays pinned.
func TestSelectPrimaryPenaltyOrder(t *testing.T) {
	// title outranks ticker suffix: a preferred trading under a plain
	// ticker loses to a common stock with a suffixed one
	got := SelectPrimary([]Listing{
		{Ticker: "ABCP", Title: "Acme Corp Preferred Series A", Exchange: "NYSE"},
		{Ticker: "ABC-PB", Title: "Acme Corp Common Stock", Exchange: "NYSE"},
	})
	assert.Equal(t, "ABC-PB", got)

	// ticker suffix outranks exchange
	got = SelectPrimary([]Listing{
		{Ticker: "ABC-PB", Title: "Acme Corp Common Stock", Exchange: "NYSE"},
		{Ticker: "ABCD", Title: "Acme Corp Common Stock", Exchange: "OTC"},
	})
	assert.Equal(t, "ABCD", got)

	// exchange outranks dual-class suffix
	got = SelectPrimary([]Listing{
		{Ticker: "XYZ-B", Title: "XYZ Holdings Class B Common Stock", Exchange: "NASDAQ"},
		{Ticker: "XYZW", Title: "XYZ Holdings Common Stock", Exchange: "OTC"},
	})
	assert.Equal(t, "XYZ-B", got)

	// dual-class suffix outranks bare punctuation
	got = SelectPrimary([]Listing{
		{Ticker: "XY-Z", Title: "XY Holdings Class Z Common Stock", Exchange: "NYSE"},
		{Ticker: "XY.ZW", Title: "XY Holdings Common Stock", Exchange: "NYSE"},
	})
	assert.Equal(t, "XY.ZW", got)

	// punctuation outranks length
	got = SelectPrimary([]Listing{
		{Ticker: "ABC.DE", Title: "Alpha Co Common Stock", Exchange: "NYSE"},
		{Ticker: "ABCDEFG", Title: "Alpha Co Common Stock", Exchange: "NYSE"},
	})
	assert.Equal(t, "ABCDEFG", got)

	// lexicographic final tie-break
	got = SelectPrimary([]Listing{
		{Ticker: "BBB", Title: "Beta Co Common Stock", Exchange: "NYSE"},
		{Ticker: "AAA", Title: "Alpha Co Common Stock", Exchange: "NYSE"},
	})
	assert.Equal(t, "AAA", got)
}

func TestSelectPrimaryTitleWordsNeedFullForm(t *testing.T) {
	// "Brighthouse" must not trip the vocabulary; the clean short common
	// wins on length
	got := SelectPrimary([]Listing{
		{Ticker: "BHFA", Title: "Brighthouse Financial Inc Common Stock", Exchange: "NASDAQ"},
		{Ticker: "ZZZZZ", Title: "Some Other Co Common Stock", Exchange: "NASDAQ"},
	})
	assert.Equal(t, "BHFA", got)

	got = SelectPrimary([]Listing{
		{Ticker: "CBNK", Title: "Community Bancorp Inc Common Stock", Exchange: "NASDAQ"},
		{Ticker: "ZZZZZ", Title: "Some Other Co Common Stock", Exchange: "NASDAQ"},
	})
	assert.Equal(t, "CBNK", got)
}

func TestSelectPrimaryPrefersMajorExchange(t *testing.T) {
	got := SelectPrimary([]Listing{
		{Ticker: "ACMF", Title: "Acme Corp Common Stock", Exchange: "OTC"},
		{Ticker: "ACME", Title: "Acme Corp Common Stock", Exchange: "NYSE"},
	})
	assert.Equal(t, "ACME", got)
}

func TestSelectPrimaryEmpty(t *testing.T) {
	assert.Equal(t, "", SelectPrimary(nil))
}

func fixtureLoader() ([]Listing, error) {
	return []Listing{
		{CIK: "0001234567", Ticker: "ABC", Title: "Acme Banking Corp Common Stock", Exchange: "NYSE"},
		{CIK: "0001234567", Ticker: "ABC-PB", Title: "Acme Banking Corp Preferred Series B", Exchange: "NYSE"},
		{CIK: "0001234567", Ticker: "ABC-WS", Title: "Acme Banking Corp Warrants", Exchange: "NYSE"},
		{CIK: "0007654321", Ticker: "XYZ", Title: "XYZ Holdings Class A Common Stock", Exchange: "NASDAQ"},
	}, nil
}

func TestMapperLookups(t *testing.T) {
	m := NewMapper(fixtureLoader)

	primary, ok := m.PrimaryTicker("0001234567")
	require.True(t, ok)
	assert.Equal(t, "ABC", primary)

	assert.Equal(t, []string{"ABC", "ABC-PB", "ABC-WS"}, m.AllTickers("0001234567"))
	assert.Equal(t, []string{"XYZ"}, m.AllTickers("0007654321"))

	exch, ok := m.Exchange("0001234567", "ABC-PB")
	require.True(t, ok)
	assert.Equal(t, "NYSE", exch)

	_, ok = m.PrimaryTicker("0000000000")
	assert.False(t, ok)
	assert.Nil(t, m.AllTickers("0000000000"))
	_, ok = m.Exchange("0001234567", "NOPE")
	assert.False(t, ok)
}

func TestMapperReload(t *testing.T) {
	calls := 0
	m := NewMapper(func() ([]Listing, error) {
		calls++
		if calls == 1 {
			return []Listing{{CIK: "0000000001", Ticker: "OLD", Title: "Old Co", Exchange: "NYSE"}}, nil
		}
		return []Listing{{CIK: "0000000001", Ticker: "NEW", Title: "New Co", Exchange: "NYSE"}}, nil
	})

	primary, ok := m.PrimaryTicker("0000000001")
	require.True(t, ok)
	assert.Equal(t, "OLD", primary)

	require.Nil(t, m.Load())
	primary, _ = m.PrimaryTicker("0000000001")
	assert.Equal(t, "NEW", primary)
}

func TestMapperLoadError(t *testing.T) {
	m := NewMapper(func() ([]Listing, error) {
		return nil, fmt.Errorf("feed unavailable")
	})
	_, ok := m.PrimaryTicker("0001234567")
	assert.False(t, ok)
	assert.NotNil(t, m.Load())
}
