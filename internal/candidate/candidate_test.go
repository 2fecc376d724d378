package candidate

import (
	"reflect"
	"testing"
)

func TestAdvanceNeverRegresses(t *testing.T) {
	c := New("jane_doe", "jane_doe.pdf")

	if c.Stage != StageIngested {
		t.Fatalf("expected fresh record at ingested stage, got %s", c.Stage)
	}

	if !c.Advance(StageScreened) {
		t.Fatalf("expected advance to screened to succeed")
	}

	if c.Advance(StageExtracted) {
		t.Fatalf("expected backward advance to be rejected")
	}

	if c.Advance(StageScreened) {
		t.Fatalf("expected advance to current stage to be a no-op")
	}

	if c.Stage != StageScreened {
		t.Fatalf("stage regressed to %s", c.Stage)
	}
}

func TestNewDefaultsToUnknownFields(t *testing.T) {
	c := New("id", "id.pdf")

	if c.Priority != PriorityUnscreened {
		t.Fatalf("expected unscreened priority, got %s", c.Priority)
	}

	if c.Fields.AvailabilityHint != Unknown || c.Fields.VisaHint != Unknown || c.Fields.TrainingHint != Unknown {
		t.Fatalf("expected unknown hints, got %+v", c.Fields)
	}

	if c.Fields.YearsExperience != -1 {
		t.Fatalf("expected unknown years experience, got %d", c.Fields.YearsExperience)
	}
}

func TestScreenedSelection(t *testing.T) {
	cs := &Candidates{}

	passed := New("a", "a.pdf")
	passed.ScreeningPassed = true
	cs.Add(passed)
	cs.Add(New("b", "b.pdf"))

	screened := cs.Screened()
	if len(screened) != 1 || screened[0].ID != "a" {
		t.Fatalf("unexpected screened selection: %+v", screened)
	}

	if cs.FindByID("b") == nil {
		t.Fatalf("failed record must stay in the batch")
	}
}

func TestTopKeywordsStableOrder(t *testing.T) {
	cs := &Candidates{}

	a := New("a", "a.pdf")
	a.FoundKeywords = []string{"cook", "cashier", "restaurant"}
	b := New("b", "b.pdf")
	b.FoundKeywords = []string{"cook", "cashier"}
	c := New("c", "c.pdf")
	c.FoundKeywords = []string{"cook"}

	cs.Add(a)
	cs.Add(b)
	cs.Add(c)

	got := cs.TopKeywords(2)
	want := []string{"cook", "cashier"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	counts := cs.CountByPriority()
	if counts[PriorityUnscreened] != 3 {
		t.Fatalf("expected 3 unscreened records, got %d", counts[PriorityUnscreened])
	}
}
