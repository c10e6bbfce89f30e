package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/alpacahq/gofilings/utils/date"
	"github.com/gofrs/uuid"
)

// deriveEventID computes the content-addressed identity: a fixed-order
// token list over the fields that are present, hashed with SHA-256, then
// folded into a name-based UUIDv5 under the URL namespace. Two builds
// with identical present-field content always derive the same id.
//
// The flip side is that supplying a previously-absent identifying field
// (say, an ISIN discovered in a later pass) changes the digest input.
// Enrichment therefore carries the original EventID forward explicitly
// instead of recomputing; see the With* methods.
func (ca CorporateAction) deriveEventID() string {
	parts := []string{string(ca.ActionType)}

	// issuer/security identifiers, most stable first
	if ca.Issuer.CIK != "" {
		parts = append(parts, "cik:"+ca.Issuer.CIK)
	}
	if ca.Security.ISIN != "" {
		parts = append(parts, "isin:"+ca.Security.ISIN)
	}
	if ca.Security.CUSIP != "" {
		parts = append(parts, "cusip:"+ca.Security.CUSIP)
	}
	if ca.Security.Ticker != "" {
		parts = append(parts, "ticker:"+ca.Security.Ticker)
	}

	// dates, preferring effective/ex/record for uniqueness, each tagged
	// with its field name
	for _, d := range []struct {
		name  string
		value *date.Date
	}{
		{"effective_date", ca.EffectiveDate},
		{"ex_date", ca.ExDate},
		{"record_date", ca.RecordDate},
		{"announce_date", ca.AnnounceDate},
	} {
		if d.value != nil {
			parts = append(parts, d.name+":"+d.value.String())
		}
	}

	if ca.Terms.Ratio != nil {
		parts = append(parts, "ratio:"+ca.Terms.Ratio.String())
	}
	if ca.Terms.CashPerShare != nil {
		parts = append(parts, "cash:"+ca.Terms.CashPerShare.String())
	}
	for _, leg := range ca.Terms.Consideration {
		var cash, ratio, ticker string
		if leg.CashPerShare != nil {
			cash = leg.CashPerShare.Amount.String()
		}
		if leg.StockRatio != nil {
			ratio = leg.StockRatio.String()
		}
		if leg.StockSecurity != nil {
			ticker = leg.StockSecurity.Ticker
		}
		parts = append(parts, fmt.Sprintf("leg:%s:%s:%s:%s", leg.Type, cash, ratio, ticker))
	}

	digest := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return uuid.NewV5(uuid.NamespaceURL, hex.EncodeToString(digest[:])).String()
}
