package policy

import (
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

func TestEvaluateOutOfScopeRule(t *testing.T) {
	t.Parallel()

	confidences := []float64{0, 0.1, 0.4, 0.69, 0.7, 0.71, 0.92, 1}
	thresholds := []float64{-0.5, 0, 0.5, 0.7, 1, 1.5}

	for _, intent := range contractx.AllIntents {
		for _, c := range confidences {
			for _, th := range thresholds {
				got := Evaluate(contractx.IntentClassification{Intent: intent, Confidence: c}, th)

				want := !InScope(intent) || c < th
				if intent == contractx.IntentSmallTalk {
					want = false
				}
				if got.OutOfScope != want {
					t.Fatalf("intent=%s c=%v th=%v: outOfScope=%v, want %v", intent, c, th, got.OutOfScope, want)
				}
				if got.SmallTalk != (intent == contractx.IntentSmallTalk) {
					t.Fatalf("intent=%s: unexpected smallTalk=%v", intent, got.SmallTalk)
				}
				if got.OutOfScope && got.SmallTalk {
					t.Fatalf("intent=%s: outOfScope and smallTalk both set", intent)
				}
				if got.Intent != intent || got.Confidence != c {
					t.Fatalf("classification not copied through: %#v", got)
				}
			}
		}
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	in := contractx.IntentClassification{Intent: contractx.IntentFlightSearch, Confidence: 0.92}
	first := Evaluate(in, DefaultThreshold)
	second := Evaluate(in, DefaultThreshold)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Evaluate() not idempotent: %#v vs %#v", first, second)
	}
}

func TestEvaluateSuggestionsAreStaticAndCopied(t *testing.T) {
	t.Parallel()

	a := Evaluate(contractx.IntentClassification{Intent: contractx.IntentHelp, Confidence: 0.9}, DefaultThreshold)
	b := Evaluate(contractx.IntentClassification{Intent: contractx.IntentFlightSearch, Confidence: 0.9}, DefaultThreshold)
	if !reflect.DeepEqual(a.Suggestions, b.Suggestions) {
		t.Fatalf("suggestions differ by intent: %v vs %v", a.Suggestions, b.Suggestions)
	}
	if len(a.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(a.Suggestions))
	}

	a.Suggestions[0] = "mutated"
	if Suggestions()[0] == "mutated" {
		t.Fatal("caller mutation leaked into the static suggestion list")
	}
}

func TestSmallTalkOverridesLowConfidence(t *testing.T) {
	t.Parallel()

	got := Evaluate(contractx.IntentClassification{Intent: contractx.IntentSmallTalk, Confidence: 0.1}, DefaultThreshold)
	if got.OutOfScope {
		t.Fatal("small talk must never be out of scope")
	}
	if !got.SmallTalk {
		t.Fatal("expected smallTalk=true")
	}
}

func TestFallbackIsOutOfScope(t *testing.T) {
	t.Parallel()

	got := Fallback(DefaultThreshold)
	if !got.OutOfScope || got.SmallTalk {
		t.Fatalf("unexpected fallback context: %#v", got)
	}
	if got.Intent != contractx.IntentOutOfScope || got.Confidence != 0 {
		t.Fatalf("unexpected fallback classification: %#v", got)
	}
}
