package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AngelCh415/revpipe/internal/models"
)

func TestEmbeddedTableOrder(t *testing.T) {
	tbl := Embedded()
	want := []string{"USA", "Germany", "UK", "Canada", "Singapore", "Australia", "Japan", "Korea"}
	got := tbl.Codes()
	if len(got) != len(want) {
		t.Fatalf("codes len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	au, ok := tbl.Get("Australia")
	if !ok || au.CPM != 7.8 {
		t.Fatalf("australia cpm = %v (ok=%v), want 7.8", au.CPM, ok)
	}
	jp, _ := tbl.Get("Japan")
	if jp.Locale.MaxTitleLength != 30 {
		t.Fatalf("japan title limit = %d, want 30", jp.Locale.MaxTitleLength)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	tbl := Embedded()
	p, _ := tbl.Get("USA")
	p.TopAffiliateCategories[0] = "mutated"
	p.CPM = 0

	again, _ := tbl.Get("USA")
	if again.TopAffiliateCategories[0] != "tech" || again.CPM != 12.5 {
		t.Fatalf("table was mutated through a returned profile: %+v", again)
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	tbl := Embedded()
	p := tbl.Lookup("Atlantis")
	if p.Code != "default" || p.CPM != 5.0 {
		t.Fatalf("unexpected fallback profile: %+v", p)
	}
	if _, ok := tbl.Get("Atlantis"); ok {
		t.Fatal("expected missing profile")
	}
}

func TestNewRejectsDuplicatesAndBlankCodes(t *testing.T) {
	if _, err := New([]models.CountryProfile{{Code: "A"}, {Code: "A"}}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := New([]models.CountryProfile{{Code: " "}}); err == nil {
		t.Fatal("expected blank code error")
	}
	if _, err := New([]models.CountryProfile{{Code: "A", AdClickRate: 2}}); err == nil {
		t.Fatal("expected rate range error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	raw := []byte("countries:\n  - code: Z\n    cpm: 3\n  - code: Y\n    cpm: 4\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Len() != 2 || tbl.Codes()[0] != "Z" {
		t.Fatalf("unexpected table: %v", tbl.Codes())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}
