package pricing

import (
	"testing"

	"refab-api/internal/model"
)

func boolp(v bool) *bool { return &v }

func iphone13() model.DeviceCatalogEntry {
	return model.DeviceCatalogEntry{Category: "smartphone", Brand: "Apple", Model: "iPhone 13", BaseValue: 400}
}

func perfectCondition() model.ConditionAssessment {
	return model.ConditionAssessment{
		PowersOn:          boolp(true),
		FullyFunctional:   boolp(true),
		IsUnlocked:        boolp(true),
		BatteryHealthGood: boolp(true),
		ScreenCondition:   model.ScreenFlawless,
		BodyCondition:     model.BodyFlawless,
		Storage:           "256GB",
	}
}

func TestComputeBuyback_PerfectDevice(t *testing.T) {
	// base 400 + storage 20 = 420, margin x0.45 = 189
	got, err := ComputeBuyback(iphone13(), perfectCondition())
	if err != nil {
		t.Fatal(err)
	}
	if got != 189 {
		t.Fatalf("want 189, got %d", got)
	}
}

func TestComputeBuyback_CrackedScreenDentedBody(t *testing.T) {
	// 420 - 100 - 50 = 270, x0.45 = 121 (whole units)
	cond := perfectCondition()
	cond.ScreenCondition = model.ScreenCracked
	cond.BodyCondition = model.BodyDented

	got, err := ComputeBuyback(iphone13(), cond)
	if err != nil {
		t.Fatal(err)
	}
	if got != 121 {
		t.Fatalf("want 121, got %d", got)
	}
}

func TestComputeBuyback_Deterministic(t *testing.T) {
	entry := iphone13()
	cond := perfectCondition()
	cond.ScreenCondition = model.ScreenScratched

	first, err := ComputeBuyback(entry, cond)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		got, err := ComputeBuyback(entry, cond)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("run %d: got %d, first run gave %d", i, got, first)
		}
	}
}

func TestComputeBuyback_NeverNegative(t *testing.T) {
	entries := []model.DeviceCatalogEntry{
		{Category: "smartphone", Brand: "Apple", Model: "iPhone 11", BaseValue: 180},
		{Category: "smartphone", Brand: "Xiaomi", Model: "Redmi Note 12", BaseValue: 90},
		{Category: "smartwatch", Brand: "Apple", Model: "Watch SE 2", BaseValue: 120},
		{Category: "smartphone", Brand: "Google", Model: "Pixel 6", BaseValue: 0},
	}
	bools := []bool{true, false}
	screens := []model.ScreenCondition{model.ScreenFlawless, model.ScreenScratched, model.ScreenCracked}
	bodies := []model.BodyCondition{model.BodyFlawless, model.BodyScratched, model.BodyDented, model.BodyBent}

	for _, entry := range entries {
		for _, powers := range bools {
			for _, functional := range bools {
				for _, unlocked := range bools {
					for _, battery := range bools {
						for _, screen := range screens {
							for _, body := range bodies {
								cond := model.ConditionAssessment{
									PowersOn:          boolp(powers),
									FullyFunctional:   boolp(functional),
									IsUnlocked:        boolp(unlocked),
									BatteryHealthGood: boolp(battery),
									ScreenCondition:   screen,
									BodyCondition:     body,
								}
								got, err := ComputeBuyback(entry, cond)
								if err != nil {
									t.Fatal(err)
								}
								if got < 0 {
									t.Fatalf("negative price %d for %s %+v", got, entry.Model, cond)
								}
							}
						}
					}
				}
			}
		}
	}
}

func TestComputeBuyback_IncompleteAssessment(t *testing.T) {
	cond := perfectCondition()
	cond.IsUnlocked = nil

	if _, err := ComputeBuyback(iphone13(), cond); err != ErrIncompleteAssessment {
		t.Fatalf("want ErrIncompleteAssessment, got %v", err)
	}
}

func TestComputeBuyback_FunctionalMultiplierOrder(t *testing.T) {
	// A dead device takes x0.10 only; fullyFunctional must not stack on top.
	cond := perfectCondition()
	cond.PowersOn = boolp(false)
	cond.FullyFunctional = boolp(false)

	got, err := ComputeBuyback(iphone13(), cond)
	if err != nil {
		t.Fatal(err)
	}
	// 420 x0.10 = 42, x0.45 = 18.9 -> 18
	if got != 18 {
		t.Fatalf("want 18, got %d", got)
	}
}

func TestComputeBuyback_LockedStacksOnFunctional(t *testing.T) {
	cond := perfectCondition()
	cond.FullyFunctional = boolp(false)
	cond.IsUnlocked = boolp(false)

	got, err := ComputeBuyback(iphone13(), cond)
	if err != nil {
		t.Fatal(err)
	}
	// 420 x0.50 = 210, x0.20 = 42, x0.45 = 18.9 -> 18
	if got != 18 {
		t.Fatalf("want 18, got %d", got)
	}
}

func TestComputeBuyback_PoorBatteryOnlyForAppleSmartphones(t *testing.T) {
	cond := perfectCondition()
	cond.BatteryHealthGood = boolp(false)
	cond.Storage = ""

	apple, err := ComputeBuyback(iphone13(), cond)
	if err != nil {
		t.Fatal(err)
	}
	// 400 - 40 = 360, x0.45 = 162
	if apple != 162 {
		t.Fatalf("apple: want 162, got %d", apple)
	}

	samsung := model.DeviceCatalogEntry{Category: "smartphone", Brand: "Samsung", Model: "Galaxy S23", BaseValue: 400}
	got, err := ComputeBuyback(samsung, cond)
	if err != nil {
		t.Fatal(err)
	}
	// no penalty: 400 x0.45 = 180
	if got != 180 {
		t.Fatalf("samsung: want 180, got %d", got)
	}
}

func TestComputeBuyback_WorstCosmeticStateWins(t *testing.T) {
	scratched := perfectCondition()
	scratched.ScreenCondition = model.ScreenScratched
	cracked := perfectCondition()
	cracked.ScreenCondition = model.ScreenCracked

	a, err := ComputeBuyback(iphone13(), scratched)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeBuyback(iphone13(), cracked)
	if err != nil {
		t.Fatal(err)
	}
	// (420-30)x0.45=175.5->175 vs (420-100)x0.45=144
	if a != 175 || b != 144 {
		t.Fatalf("want 175/144, got %d/%d", a, b)
	}
}

func TestStorageBonus_Tiers(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"64GB":  0,
		"128GB": 0,
		"256GB": 20,
		"512GB": 50,
		"1TB":   80,
		"2TB":   120,
		"3TB":   0,
	}
	for label, want := range cases {
		if got := StorageBonus(label); got != want {
			t.Errorf("StorageBonus(%q) = %d, want %d", label, got, want)
		}
	}
}
