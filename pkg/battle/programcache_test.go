package battle

import (
	"encoding/json"
	"testing"
)

func TestProgramCacheClampsCapacity(t *testing.T) {
	pc := NewProgramCache(1, nil)
	if pc.Len() != 0 {
		t.Fatalf("expected a fresh cache to be empty")
	}
}

func TestProgramCacheGetParsesAndCaches(t *testing.T) {
	pc := NewProgramCache(0, nil)
	raw, _ := json.Marshal([]string{"return true"})
	cb := &Callback{Event: "Start", Raw: raw}
	id := EffectID{Kind: KindStatus, ID: "burn"}

	prog1, err := pc.Get(id, "Start", 0, cb)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if pc.Len() != 1 {
		t.Fatalf("expected 1 cached program, got %d", pc.Len())
	}

	prog2, err := pc.Get(id, "Start", 0, cb)
	if err != nil {
		t.Fatalf("unexpected error on cached fetch: %v", err)
	}
	if prog1 != prog2 {
		t.Error("expected the second Get to return the identical cached *Program")
	}
}

func TestProgramCacheGetReturnsParseErrorWithoutCaching(t *testing.T) {
	pc := NewProgramCache(0, nil)
	cb := &Callback{Event: "Start", Raw: json.RawMessage(`not valid json`)}
	id := EffectID{Kind: KindStatus, ID: "burn"}

	if _, err := pc.Get(id, "Start", 0, cb); err == nil {
		t.Fatal("expected a parse error for invalid program JSON")
	}
	if pc.Len() != 0 {
		t.Errorf("a failed parse should not be cached, got %d entries", pc.Len())
	}
}

func TestProgramCacheInvalidateDropsMatchingEntries(t *testing.T) {
	pc := NewProgramCache(0, nil)
	raw, _ := json.Marshal([]string{"return true"})
	idA := EffectID{Kind: KindStatus, ID: "burn"}
	idB := EffectID{Kind: KindStatus, ID: "poison"}

	if _, err := pc.Get(idA, "Start", 0, &Callback{Raw: raw}); err != nil {
		t.Fatal(err)
	}
	if _, err := pc.Get(idB, "Start", 0, &Callback{Raw: raw}); err != nil {
		t.Fatal(err)
	}
	if pc.Len() != 2 {
		t.Fatalf("expected 2 cached entries, got %d", pc.Len())
	}

	pc.Invalidate(idA)
	if pc.Len() != 1 {
		t.Errorf("expected Invalidate to drop only idA's entry, got %d remaining", pc.Len())
	}
}
