package models

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var (
	tickerRE   = regexp.MustCompile(`^[A-Z0-9.\-]{1,12}$`)
	currencyRE = regexp.MustCompile(`^[A-Z]{3}$`)
	cusipRE    = regexp.MustCompile(`^[0-9A-Z]{9}$`)
	isinRE     = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)
	cikRE      = regexp.MustCompile(`^[0-9]{10}$`)
	micRE      = regexp.MustCompile(`^[A-Z0-9]{4}$`) // ISO 10383
)

// IssuerRef identifies the issuing entity behind a corporate action.
type IssuerRef struct {
	Name string `json:"name,omitempty"`
	// SEC 10-digit CIK with leading zeros
	CIK string `json:"cik,omitempty"`
	// some issuers carry an entity-level ISIN
	ISIN    string `json:"isin,omitempty"`
	Country string `json:"country,omitempty"`
}

func (r IssuerRef) Validate() error {
	if r.CIK != "" {
		if err := validation.Validate(r.CIK, validation.Match(cikRE)); err != nil {
			return fmt.Errorf("issuer cik must be 10 digits, zero-padded: %q", r.CIK)
		}
	}
	if r.ISIN != "" {
		if err := validation.Validate(r.ISIN, validation.Match(isinRE)); err != nil {
			return fmt.Errorf("invalid issuer isin format: %q", r.ISIN)
		}
	}
	return nil
}

// SecurityRef identifies one tradable security. All identifiers are
// optional; whichever are present must be well formed.
type SecurityRef struct {
	Ticker string `json:"ticker,omitempty"`
	// MIC code for the listing exchange
	ExchangeMIC string `json:"exchange_mic,omitempty"`
	ISIN        string `json:"isin,omitempty"`
	CUSIP       string `json:"cusip,omitempty"`
}

// Normalized returns a copy with the ticker upper-cased, matching how
// identifiers arrive from mixed-case filing text.
func (r SecurityRef) Normalized() SecurityRef {
	r.Ticker = strings.ToUpper(r.Ticker)
	return r
}

func (r SecurityRef) Validate() error {
	if r.Ticker != "" {
		if err := validation.Validate(r.Ticker, validation.Match(tickerRE)); err != nil {
			return fmt.Errorf("ticker must be A-Z, 0-9, dot or hyphen, up to 12 chars: %q", r.Ticker)
		}
	}
	if r.ExchangeMIC != "" {
		if err := validation.Validate(r.ExchangeMIC, validation.Match(micRE)); err != nil {
			return fmt.Errorf("exchange_mic must be a valid MIC code: %q", r.ExchangeMIC)
		}
	}
	if r.ISIN != "" {
		if err := validation.Validate(r.ISIN, validation.Match(isinRE)); err != nil {
			return fmt.Errorf("invalid isin format: %q", r.ISIN)
		}
	}
	if r.CUSIP != "" {
		if err := validation.Validate(r.CUSIP, validation.Match(cusipRE)); err != nil {
			return fmt.Errorf("invalid cusip format: %q", r.CUSIP)
		}
	}
	return nil
}

// Money is a currency-tagged decimal amount. Never a float.
type Money struct {
	// ISO-4217 code, e.g. USD
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

func (m Money) Validate() error {
	if err := validation.Validate(m.Currency, validation.Required, validation.Match(currencyRE)); err != nil {
		return fmt.Errorf("currency must be 3-letter ISO code, uppercase: %q", m.Currency)
	}
	return nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s:%s", m.Currency, m.Amount.String())
}
