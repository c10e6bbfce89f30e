package models

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/alpacahq/gofilings/models/enum"
	"github.com/shopspring/decimal"
)

// Ratio represents terms like 2-for-1, or 0.5 new per old. Numerator and
// denominator are kept exact; never collapse them to a float.
type Ratio struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

func (r Ratio) Validate() error {
	if r.Numerator < 1 || r.Denominator < 1 {
		return fmt.Errorf("ratio parts must be positive integers: %d-for-%d", r.Numerator, r.Denominator)
	}
	return nil
}

// String renders the conventional form, e.g. "2-for-1".
func (r Ratio) String() string {
	return fmt.Sprintf("%d-for-%d", r.Numerator, r.Denominator)
}

func (r Ratio) AsDecimal() decimal.Decimal {
	return decimal.New(int64(r.Numerator), 0).
		Div(decimal.New(int64(r.Denominator), 0)).
		Round(10)
}

var ratioFormRE = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:-?\s*for\s*-?|:|/)\s*(\d+)`)

// maximum denominator accepted when approximating a decimal ratio
const ratioDenominatorCap = 1000

// ParseRatio parses the ratio spellings seen in filings:
// "2-for-1", "2 for 1", "3:2", "3/2", and bare decimals like "0.5"
// (read as 0.5 new per 1 old, i.e. 1-for-2).
func ParseRatio(text string) (Ratio, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Ratio{}, false
	}

	if m := ratioFormRE.FindStringSubmatch(s); m != nil {
		num, ok := new(big.Rat).SetString(m[1])
		if !ok {
			return Ratio{}, false
		}
		den, ok := new(big.Rat).SetString(m[2])
		if !ok {
			return Ratio{}, false
		}
		return ratioFromRat(new(big.Rat).Quo(num, den))
	}

	if rat, ok := new(big.Rat).SetString(s); ok {
		return ratioFromRat(rat)
	}
	return Ratio{}, false
}

func ratioFromRat(rat *big.Rat) (Ratio, bool) {
	if rat.Sign() <= 0 || !rat.Num().IsInt64() || !rat.Denom().IsInt64() {
		return Ratio{}, false
	}
	if rat.Denom().Int64() > ratioDenominatorCap {
		return Ratio{}, false
	}
	return Ratio{
		Numerator:   int(rat.Num().Int64()),
		Denominator: int(rat.Denom().Int64()),
	}, true
}

// ConsiderationLeg is one component of a multi-part payout, e.g. the cash
// and stock components of a mixed merger.
type ConsiderationLeg struct {
	Type enum.ConsiderationType `json:"type"`
	// per-share cash for cash legs
	CashPerShare *Money `json:"cash_per_share,omitempty"`
	// new shares received per 1 old share for stock legs
	StockRatio *Ratio `json:"stock_ratio,omitempty"`
	// security received for stock consideration (e.g. acquirer's ticker)
	StockSecurity *SecurityRef `json:"stock_security,omitempty"`
	Description   string       `json:"description,omitempty"`
}

func (l ConsiderationLeg) Validate() error {
	if !enum.ValidConsiderationType(l.Type) {
		return fmt.Errorf("unknown consideration leg type %q", l.Type)
	}
	if l.Type == enum.CashLeg && l.CashPerShare == nil {
		return fmt.Errorf("cash leg requires cash_per_share")
	}
	if l.Type == enum.StockLeg && l.StockRatio == nil {
		return fmt.Errorf("stock leg requires stock_ratio")
	}
	if l.CashPerShare != nil {
		if err := l.CashPerShare.Validate(); err != nil {
			return err
		}
	}
	if l.StockRatio != nil {
		if err := l.StockRatio.Validate(); err != nil {
			return err
		}
	}
	if l.StockSecurity != nil {
		if err := l.StockSecurity.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Terms carries the economic terms of the action. The generic ratio and
// cash fields cover the simple cases; consideration legs carry the
// detailed breakdown for mergers and mixed payouts.
type Terms struct {
	Ratio         *Ratio             `json:"ratio,omitempty"`
	CashPerShare  *Money             `json:"cash_per_share,omitempty"`
	Consideration []ConsiderationLeg `json:"consideration,omitempty"`
}

func (t Terms) Validate() error {
	if t.Ratio != nil {
		if err := t.Ratio.Validate(); err != nil {
			return err
		}
	}
	if t.CashPerShare != nil {
		if err := t.CashPerShare.Validate(); err != nil {
			return err
		}
	}
	for _, leg := range t.Consideration {
		if err := leg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasRatio reports whether a share ratio is present directly or through
// any stock consideration leg.
func (t Terms) HasRatio() bool {
	if t.Ratio != nil {
		return true
	}
	for _, leg := range t.Consideration {
		if leg.StockRatio != nil {
			return true
		}
	}
	return false
}

// HasCash reports whether a cash amount is present directly or through
// any cash consideration leg.
func (t Terms) HasCash() bool {
	if t.CashPerShare != nil {
		return true
	}
	for _, leg := range t.Consideration {
		if leg.CashPerShare != nil {
			return true
		}
	}
	return false
}
