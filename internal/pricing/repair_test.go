package pricing

import (
	"testing"

	"refab-api/internal/model"
)

// issueTable is a minimal IssueCatalog for tests.
type issueTable map[model.IssueID]int

func (t issueTable) Issue(id model.IssueID) (model.RepairIssue, bool) {
	cost, ok := t[id]
	return model.RepairIssue{ID: id, BaseCost: cost}, ok
}

var testIssues = issueTable{
	model.IssueScreen:  80,
	model.IssueBattery: 50,
	model.IssueCamera:  60,
	model.IssueOther:   0,
}

func TestComputeRepair_ScreenAndBattery(t *testing.T) {
	// baseValue 400 -> tier x1.8; screen 80->144 (premium 230), battery 50->90
	est, err := ComputeRepair(iphone13(), []model.IssueID{model.IssueScreen, model.IssueBattery}, testIssues)
	if err != nil {
		t.Fatal(err)
	}
	if est.DiagnosticRequired {
		t.Fatal("unexpected diagnostic sentinel")
	}
	if !est.IncludesOriginalScreenOption {
		t.Fatal("screen issue should carry the original screen option")
	}
	if est.StandardTotal != 234 {
		t.Fatalf("standard: want 234, got %d", est.StandardTotal)
	}
	if est.PremiumTotal != 320 {
		t.Fatalf("premium: want 320, got %d", est.PremiumTotal)
	}
}

func TestComputeRepair_OtherIsDiagnosticSentinel(t *testing.T) {
	est, err := ComputeRepair(iphone13(), []model.IssueID{model.IssueOther}, testIssues)
	if err != nil {
		t.Fatal(err)
	}
	if !est.DiagnosticRequired {
		t.Fatal("want diagnostic sentinel")
	}
	if est.StandardTotal != 0 || est.PremiumTotal != 0 {
		t.Fatalf("diagnostic estimate must carry no numeric price, got %+v", est)
	}
}

func TestComputeRepair_NonScreenIssuesIdenticalInBothTotals(t *testing.T) {
	est, err := ComputeRepair(iphone13(), []model.IssueID{model.IssueBattery, model.IssueCamera}, testIssues)
	if err != nil {
		t.Fatal(err)
	}
	if est.IncludesOriginalScreenOption {
		t.Fatal("no screen issue selected")
	}
	if est.StandardTotal != est.PremiumTotal {
		t.Fatalf("totals must match without a screen issue: %d vs %d", est.StandardTotal, est.PremiumTotal)
	}
}

func TestComputeRepair_Deterministic(t *testing.T) {
	issues := []model.IssueID{model.IssueScreen, model.IssueCamera}
	first, err := ComputeRepair(iphone13(), issues, testIssues)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		got, err := ComputeRepair(iphone13(), issues, testIssues)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("run %d: got %+v, first run gave %+v", i, got, first)
		}
	}
}

func TestTierMultiplier_Monotonic(t *testing.T) {
	expensive := model.DeviceCatalogEntry{Category: "smartphone", Brand: "Apple", Model: "iPhone 15 Pro", BaseValue: 900}
	cheap := model.DeviceCatalogEntry{Category: "smartphone", Brand: "Xiaomi", Model: "Redmi Note 12", BaseValue: 100}

	hi, err := ComputeRepair(expensive, []model.IssueID{model.IssueBattery}, testIssues)
	if err != nil {
		t.Fatal(err)
	}
	lo, err := ComputeRepair(cheap, []model.IssueID{model.IssueBattery}, testIssues)
	if err != nil {
		t.Fatal(err)
	}
	if hi.StandardTotal <= lo.StandardTotal {
		t.Fatalf("tier multiplier not monotonic: base 900 -> %d, base 100 -> %d", hi.StandardTotal, lo.StandardTotal)
	}
}

func TestTierMultiplier_Boundaries(t *testing.T) {
	cases := map[int]float64{
		0:    1.0,
		199:  1.0,
		200:  1.2,
		399:  1.2,
		400:  1.8,
		800:  1.8,
		801:  2.5,
		1200: 2.5,
	}
	for base, want := range cases {
		if got := TierMultiplier(base); got != want {
			t.Errorf("TierMultiplier(%d) = %v, want %v", base, got, want)
		}
	}
}

func TestSelectedTotal(t *testing.T) {
	est := Estimate{StandardTotal: 234, PremiumTotal: 320, IncludesOriginalScreenOption: true}
	if got := est.SelectedTotal(model.ScreenQualityGeneric); got != 234 {
		t.Fatalf("generic: want 234, got %d", got)
	}
	if got := est.SelectedTotal(model.ScreenQualityOriginal); got != 320 {
		t.Fatalf("original: want 320, got %d", got)
	}

	noScreen := Estimate{StandardTotal: 90, PremiumTotal: 90}
	if got := noScreen.SelectedTotal(model.ScreenQualityOriginal); got != 90 {
		t.Fatalf("quality is ignored without a screen option, got %d", got)
	}
}

func TestComputeRepair_EmptySelection(t *testing.T) {
	if _, err := ComputeRepair(iphone13(), nil, testIssues); err != ErrNoIssues {
		t.Fatalf("want ErrNoIssues, got %v", err)
	}
}
