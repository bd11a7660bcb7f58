// Package policy turns an intent classification into a routing decision.
package policy

import (
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

const DefaultThreshold = 0.70

// Suggestions are shown with out-of-scope replies. They do not depend on the
// intent; personalizing them is a separate policy decision.
var suggestions = []string{
	"Search AMM → DOH on Oct 10",
	"Show my saved trips",
	"Reserve the cheapest AMM → DOH",
}

var inScope = map[contractx.Intent]struct{}{
	contractx.IntentFlightSearch:      {},
	contractx.IntentPriceVerify:       {},
	contractx.IntentCreateOrder:       {},
	contractx.IntentSaveTrip:          {},
	contractx.IntentListTrips:         {},
	contractx.IntentCancelReservation: {},
}

func Suggestions() []string {
	return append([]string(nil), suggestions...)
}

func InScope(intent contractx.Intent) bool {
	_, ok := inScope[intent]
	return ok
}

// Evaluate is pure. The threshold is used as given, out-of-range values only
// shift every classification to one side.
func Evaluate(c contractx.IntentClassification, threshold float64) contractx.PolicyContext {
	outOfScope := !InScope(c.Intent) || c.Confidence < threshold
	smallTalk := c.Intent == contractx.IntentSmallTalk

	return contractx.PolicyContext{
		Intent:      c.Intent,
		Confidence:  c.Confidence,
		OutOfScope:  outOfScope && !smallTalk,
		SmallTalk:   smallTalk,
		Suggestions: Suggestions(),
	}
}

// Fallback is the context used when classification itself failed.
func Fallback(threshold float64) contractx.PolicyContext {
	return Evaluate(contractx.IntentClassification{
		Intent:     contractx.IntentOutOfScope,
		Confidence: 0,
	}, threshold)
}
