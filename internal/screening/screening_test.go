package screening

import (
	"reflect"
	"testing"
)

func TestScreenCountsDistinctKeywords(t *testing.T) {
	s := New([]string{"customer service", "food safety"}, 2)

	// "food safety" appears twice but counts once.
	text := "Strong Customer Service background. Food safety trained, food safety lead."
	res := s.Screen(text)

	if res.Hits != 2 {
		t.Fatalf("expected 2 hits, got %d", res.Hits)
	}
	if !res.Passed {
		t.Fatalf("expected screening to pass at threshold 2")
	}
	if !reflect.DeepEqual(res.Found, []string{"customer service", "food safety"}) {
		t.Fatalf("unexpected found keywords: %v", res.Found)
	}
}

func TestScreenBelowThresholdFails(t *testing.T) {
	s := New([]string{"cook", "cashier"}, 2)

	res := s.Screen("experienced cook")
	if res.Hits != 1 || res.Passed {
		t.Fatalf("expected 1 hit and failed screening, got %+v", res)
	}
}

func TestScreenDeterministic(t *testing.T) {
	s := New([]string{"restaurant", "cook", "fast food"}, 2)
	text := "Fast food cook at a busy restaurant"

	first := s.Screen(text)
	second := s.Screen(text)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("screening is not deterministic: %+v vs %+v", first, second)
	}
}

func TestScreenIgnoresBlankKeywords(t *testing.T) {
	s := New([]string{"", "  ", "cook"}, 1)

	res := s.Screen("line cook")
	if res.Hits != 1 {
		t.Fatalf("expected blank keywords to be ignored, got %d hits", res.Hits)
	}
}

func TestNewFallsBackToDefaultThreshold(t *testing.T) {
	s := New([]string{"cook"}, 0)
	if s.Threshold() != DefaultThreshold {
		t.Fatalf("expected default threshold %d, got %d", DefaultThreshold, s.Threshold())
	}
}
