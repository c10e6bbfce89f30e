package cikmap

import (
	"regexp"
	"sort"
	"strings"
)

// Ticker suffixes that mark derivative share classes. A preferred
// series like ABC-PB or ABC.PRA, a warrant like ABC-WS, a unit like
// ABC-U, a right like ABC-R.
var derivativeSuffixREs = []*regexp.Regexp{
	regexp.MustCompile(`[-.]PR?[A-Z]*$`),
	regexp.MustCompile(`[-.]WS?$`),
	regexp.MustCompile(`[-.]U$`),
	regexp.MustCompile(`[-.]R$`),
}

// A single trailing letter is usually just a share class (BRK.B, GOOG
// vs GOOGL is the exception); penalize mildly so the bare ticker wins
// when both exist.
var dualClassSuffixRE = regexp.MustCompile(`[-.][A-Z]$`)

// Security-title vocabulary that signals a non-common instrument. Kept
// to plural/long forms: short singulars like "unit" and "right" appear
// inside ordinary issuer names (Community, Brighthouse).
var derivativeTitleWords = []string{
	"preferred",
	"depositary",
	"units",
	"warrant",
	"notes",
	"bond",
	"convertible",
}

var majorExchanges = map[string]bool{
	"NASDAQ": true,
	"NYSE":   true,
	"XNAS":   true,
	"XNYS":   true,
	"AMEX":   true,
	"ARCA":   true,
	"BATS":   true,
}

type score struct {
	derivativeTitle  int
	derivativeSuffix int
	offExchange      int
	dualClass        int
	punctuation      int
	length           int
	ticker           string
}

func scoreListing(l Listing) score {
	s := score{length: len(l.Ticker), ticker: l.Ticker}

	ticker := strings.ToUpper(l.Ticker)
	for _, re := range derivativeSuffixREs {
		if re.MatchString(ticker) {
			s.derivativeSuffix = 1
			break
		}
	}

	title := strings.ToLower(l.Title)
	for _, w := range derivativeTitleWords {
		if strings.Contains(title, w) {
			s.derivativeTitle = 1
			break
		}
	}

	if !majorExchanges[strings.ToUpper(l.Exchange)] {
		s.offExchange = 1
	}
	if dualClassSuffixRE.MatchString(ticker) {
		s.dualClass = 1
	}
	if strings.ContainsAny(ticker, ".-") {
		s.punctuation = 1
	}
	return s
}

// The title is the stronger signal: a preferred series sometimes trades
// under a plain ticker, but its title always says so.
func (s score) less(o score) bool {
	if s.derivativeTitle != o.derivativeTitle {
		return s.derivativeTitle < o.derivativeTitle
	}
	if s.derivativeSuffix != o.derivativeSuffix {
		return s.derivativeSuffix < o.derivativeSuffix
	}
	if s.offExchange != o.offExchange {
		return s.offExchange < o.offExchange
	}
	if s.dualClass != o.dualClass {
		return s.dualClass < o.dualClass
	}
	if s.punctuation != o.punctuation {
		return s.punctuation < o.punctuation
	}
	if s.length != o.length {
		return s.length < o.length
	}
	return s.ticker < o.ticker
}

// SelectPrimary picks the issuer's primary common-stock ticker from the
// listings sharing its CIK. Derivative instruments (preferred series,
// warrants, units, rights, notes) lose to the common, off-exchange
// listings lose to the majors, and among plain commons the shortest
// ticker wins.
func SelectPrimary(listings []Listing) string {
	if len(listings) == 0 {
		return ""
	}

	scored := make([]score, len(listings))
	for i, l := range listings {
		scored[i] = scoreListing(l)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].less(scored[j])
	})
	return scored[0].ticker
}
