package enum

import "strings"

// ActionType is the normalized set of corporate action types. Keep this
// list stable; add new values rather than renaming.
type ActionType string

const (
	ForwardSplit    ActionType = "forward_split"
	ReverseSplit    ActionType = "reverse_split"
	CashDividend    ActionType = "cash_dividend"
	StockDividend   ActionType = "stock_dividend"
	SpinOff         ActionType = "spin_off"
	MergerCash      ActionType = "merger_cash"
	MergerStock     ActionType = "merger_stock"
	MergerCashStock ActionType = "merger_cash_stock"
	RightsOffering  ActionType = "rights_offering"
	TenderOffer     ActionType = "tender_offer"
	Buyback         ActionType = "buyback"
	Bankruptcy      ActionType = "bankruptcy"
	OtherAction     ActionType = "other"
)

func ValidActionType(t ActionType) bool {
	switch t {
	case ForwardSplit, ReverseSplit, CashDividend, StockDividend,
		SpinOff, MergerCash, MergerStock, MergerCashStock,
		RightsOffering, TenderOffer, Buyback, Bankruptcy, OtherAction:
		return true
	}
	return false
}

// RequiresRatio reports whether the action type must carry a share ratio,
// either directly in the terms or through a stock consideration leg.
func (t ActionType) RequiresRatio() bool {
	switch t {
	case ForwardSplit, ReverseSplit, StockDividend, SpinOff:
		return true
	}
	return false
}

// RequiresCash reports whether the action type must carry a cash amount.
func (t ActionType) RequiresCash() bool {
	switch t {
	case CashDividend, MergerCash, MergerCashStock:
		return true
	}
	return false
}

// RequiresStockRatio reports whether the action type must carry a stock
// exchange ratio (stock mergers).
func (t ActionType) RequiresStockRatio() bool {
	switch t {
	case MergerStock, MergerCashStock:
		return true
	}
	return false
}

type DocType string

const (
	EightK          DocType = "8-K"
	SixK            DocType = "6-K"
	TenK            DocType = "10-K"
	TenQ            DocType = "10-Q"
	Prospectus      DocType = "prospectus"
	ExchangeNotice  DocType = "exchange_notice"
	PressRelease    DocType = "press_release"
	Announcement    DocType = "company_announcement"
	RegulatorNotice DocType = "regulator_bulletin"
	OtherDoc        DocType = "other"
)

type SourceSystem string

const (
	SECEdgar  SourceSystem = "sec_edgar"
	Nasdaq    SourceSystem = "nasdaq"
	NYSE      SourceSystem = "nyse"
	JPX       SourceSystem = "jpx"
	LSE       SourceSystem = "lse"
	Euronext  SourceSystem = "euronext"
	CompanyIR SourceSystem = "company_ir"
	Newswire  SourceSystem = "newswire"
	OtherSrc  SourceSystem = "other"
)

// Status is deliberately an open label set. The constants below cover the
// lifecycle labels we emit today; unknown labels from newer pipeline
// versions pass through untouched.
type Status string

const (
	Announced Status = "announced"
	Amended   Status = "amended"
	Withdrawn Status = "withdrawn"
	Effective Status = "effective"
	Cancelled Status = "cancelled"
)

type ConsiderationType string

const (
	CashLeg   ConsiderationType = "cash"
	StockLeg  ConsiderationType = "stock"
	RightsLeg ConsiderationType = "rights"
	OtherLeg  ConsiderationType = "other"
)

func ValidConsiderationType(t ConsiderationType) bool {
	return t == CashLeg || t == StockLeg || t == RightsLeg || t == OtherLeg
}

// EvidenceKind classifies an effective-date estimate by how authoritative
// the supporting language is.
type EvidenceKind string

const (
	// a specific date stated as factual ("effective on Sep 30, 2025")
	Definitive EvidenceKind = "definitive"
	// a specific target date with hedging ("on or about Oct 1, 2025")
	Estimated EvidenceKind = "estimated"
	// a range or period ("Q4 2025")
	Window EvidenceKind = "window"
	// relative to another milestone ("within 60 days after shareholder approval")
	Relative EvidenceKind = "relative"
)

// Rank orders evidence kinds; higher is more authoritative.
func (k EvidenceKind) Rank() int {
	switch k {
	case Definitive:
		return 3
	case Estimated:
		return 2
	case Window:
		return 1
	default:
		return 0
	}
}

// NormalizeEvidenceKind lower-cases and trims the raw kind label and folds
// anything unrecognized down to Relative.
func NormalizeEvidenceKind(raw string) EvidenceKind {
	switch k := EvidenceKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case Definitive, Estimated, Window, Relative:
		return k
	}
	return Relative
}
