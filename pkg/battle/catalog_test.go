package battle

import (
	"context"
	"testing"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Stealth Rock", "stealthrock"},
		{"U-turn", "uturn"},
		{"Will-O-Wisp", "willowisp"},
		{"already_lower", "alreadylower"},
	}
	for _, tt := range tests {
		if got := NormalizeIdentifier(tt.raw); got != tt.want {
			t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCatalogPutGet(t *testing.T) {
	cat := NewCatalog()
	cat.Put(&Effect{ID: EffectID{Kind: KindMove, ID: "Tackle"}, Name: "Tackle"})

	eff, ok := cat.Get(KindMove, "tackle")
	if !ok {
		t.Fatal("expected tackle to be found under its normalized id")
	}
	if eff.Name != "Tackle" {
		t.Errorf("got name %q, want Tackle", eff.Name)
	}

	if _, ok := cat.Get(KindMove, "TACKLE"); !ok {
		t.Error("lookup should normalize the query id too")
	}

	if _, ok := cat.Get(KindAbility, "tackle"); ok {
		t.Error("lookup should not cross EffectKind boundaries")
	}
}

func TestCatalogMerge(t *testing.T) {
	a := NewCatalog()
	a.Put(&Effect{ID: EffectID{Kind: KindMove, ID: "tackle"}, Name: "Tackle"})

	b := NewCatalog()
	b.Put(&Effect{ID: EffectID{Kind: KindMove, ID: "ember"}, Name: "Ember"})
	b.Put(&Effect{ID: EffectID{Kind: KindMove, ID: "tackle"}, Name: "Tackle (overridden)"})

	a.Merge(b)

	if eff, ok := a.Get(KindMove, "ember"); !ok || eff.Name != "Ember" {
		t.Error("merge should add entries absent from the receiver")
	}
	if eff, ok := a.Get(KindMove, "tackle"); !ok || eff.Name != "Tackle (overridden)" {
		t.Error("merge should overwrite colliding entries with the source's value")
	}
}

func TestLoadCatalogFromDataDirToleratesMissingFiles(t *testing.T) {
	cat, err := LoadCatalogFromDataDir(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("expected no error for an empty data directory, got %v", err)
	}
	if cat == nil {
		t.Fatal("expected a non-nil, empty catalog")
	}
}
