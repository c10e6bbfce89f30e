// Package cikmap maintains an in-memory lookup from SEC CIK numbers to
// the tickers listed for that issuer, and picks the issuer's primary
// common-stock ticker out of the preferreds, warrants, units, and notes
// that share the CIK. The content loads lazily at first lookup and can
// be refreshed with Load().
package cikmap

import (
	"sync"

	"github.com/alpacahq/gopaca/log"
)

// Listing is one ticker registered under an issuer's CIK.
type Listing struct {
	CIK      string
	Ticker   string
	Title    string
	Exchange string
}

// LoadListingsFunc populates the mapper. Injected so tests and callers
// without an EDGAR company_tickers feed can supply their own table.
type LoadListingsFunc func() ([]Listing, error)

// Mapper answers CIK lookups. Safe for concurrent use.
type Mapper interface {
	PrimaryTicker(cik string) (string, bool)
	AllTickers(cik string) []string
	Exchange(cik, ticker string) (string, bool)
	Load() error
}

type mapper struct {
	m      sync.RWMutex
	load   LoadListingsFunc
	byCIK  map[string][]Listing
	loaded bool
}

func NewMapper(load LoadListingsFunc) Mapper {
	return &mapper{load: load, byCIK: map[string][]Listing{}}
}

func (c *mapper) Load() error {
	c.m.Lock()
	defer c.m.Unlock()
	return c.loadLocked()
}

func (c *mapper) loadLocked() error {
	listings, err := c.load()
	if err != nil {
		return err
	}

	byCIK := make(map[string][]Listing)
	for _, l := range listings {
		if l.CIK == "" || l.Ticker == "" {
			continue
		}
		byCIK[l.CIK] = append(byCIK[l.CIK], l)
	}
	c.byCIK = byCIK
	c.loaded = true
	log.Debug("cik mapper loaded", "issuers", len(byCIK))
	return nil
}

func (c *mapper) ensure() {
	c.m.RLock()
	loaded := c.loaded
	c.m.RUnlock()
	if loaded {
		return
	}
	c.m.Lock()
	defer c.m.Unlock()
	if c.loaded {
		return
	}
	if err := c.loadLocked(); err != nil {
		log.Error("cik mapper load failed", "error", err)
	}
}

// PrimaryTicker returns the issuer's primary common-stock ticker, or
// false when the CIK has no listings.
func (c *mapper) PrimaryTicker(cik string) (string, bool) {
	c.ensure()
	c.m.RLock()
	defer c.m.RUnlock()

	listings := c.byCIK[cik]
	if len(listings) == 0 {
		return "", false
	}
	return SelectPrimary(listings), true
}

// AllTickers returns every ticker listed under the CIK, primary first.
func (c *mapper) AllTickers(cik string) []string {
	c.ensure()
	c.m.RLock()
	defer c.m.RUnlock()

	listings := c.byCIK[cik]
	if len(listings) == 0 {
		return nil
	}

	primary := SelectPrimary(listings)
	out := []string{primary}
	for _, l := range listings {
		if l.Ticker != primary {
			out = append(out, l.Ticker)
		}
	}
	return out
}

// Exchange returns the listing exchange for a specific ticker under the
// CIK.
func (c *mapper) Exchange(cik, ticker string) (string, bool) {
	c.ensure()
	c.m.RLock()
	defer c.m.RUnlock()

	for _, l := range c.byCIK[cik] {
		if l.Ticker == ticker {
			return l.Exchange, true
		}
	}
	return "", false
}
