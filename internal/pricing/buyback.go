// Package pricing computes buyback and repair prices from catalog data and
// user-supplied condition/issue parameters. Every function here is pure: no
// I/O, no hidden state, no clock. The same code runs for the instant client
// estimate and for the server-side verification of a submitted order, which
// is what makes tolerance-bounded verification possible at all.
package pricing

import (
	"errors"
	"math"

	"refab-api/internal/model"
)

// ErrIncompleteAssessment is returned when any of the three required boolean
// condition answers is still unanswered.
var ErrIncompleteAssessment = errors.New("condition assessment incomplete: powersOn, fullyFunctional and isUnlocked must all be answered")

// Fixed buyback parameters. The evaluation order in ComputeBuyback is part of
// the pricing contract: the steps mix additive and multiplicative operations,
// so reordering them changes the result.
const (
	notPoweringFactor    = 0.10
	notFunctionalFactor  = 0.50
	lockedFactor         = 0.20
	poorBatteryPenalty   = 40
	screenScratchedDelta = 30
	screenCrackedDelta   = 100
	bodyScratchedDelta   = 20
	bodyDentedDelta      = 50
	bodyBentDelta        = 80
	resaleMargin         = 0.45
)

// storageBonuses are flat additive bonuses for recognized capacity tiers.
// Unrecognized or absent tiers contribute nothing.
var storageBonuses = map[string]int{
	"256GB": 20,
	"512GB": 50,
	"1TB":   80,
	"2TB":   120,
}

// StorageBonus returns the flat bonus for a storage tier label.
func StorageBonus(storage string) int {
	return storageBonuses[storage]
}

// ComputeBuyback computes the buyback offer for a resolved catalog entry and
// a completed condition assessment. The result is in whole currency units,
// never negative.
//
// Steps, in contract order:
//  1. seed with the catalog base value
//  2. add the storage tier bonus
//  3. functional multipliers: not powering on x0.10, else not fully
//     functional x0.50; carrier/account locked x0.20
//  4. Apple smartphone with poor reported battery health: flat -40
//  5. cosmetic deductions, worse state wins within each group:
//     screen -30/-100, body -20/-50/-80
//  6. resale margin x0.45, clamp at 0, truncate to whole units
func ComputeBuyback(entry model.DeviceCatalogEntry, cond model.ConditionAssessment) (int, error) {
	if !cond.Complete() {
		return 0, ErrIncompleteAssessment
	}

	price := float64(entry.BaseValue)
	price += float64(StorageBonus(cond.Storage))

	if !*cond.PowersOn {
		price *= notPoweringFactor
	} else if !*cond.FullyFunctional {
		price *= notFunctionalFactor
	}
	if !*cond.IsUnlocked {
		price *= lockedFactor
	}
	if entry.Brand == "Apple" && entry.Category == "smartphone" &&
		cond.BatteryHealthGood != nil && !*cond.BatteryHealthGood {
		price -= poorBatteryPenalty
	}

	switch cond.ScreenCondition {
	case model.ScreenScratched:
		price -= screenScratchedDelta
	case model.ScreenCracked:
		price -= screenCrackedDelta
	}
	switch cond.BodyCondition {
	case model.BodyScratched:
		price -= bodyScratchedDelta
	case model.BodyDented:
		price -= bodyDentedDelta
	case model.BodyBent:
		price -= bodyBentDelta
	}

	price *= resaleMargin
	if price < 0 {
		price = 0
	}
	return int(math.Floor(price)), nil
}
