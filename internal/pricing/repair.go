package pricing

import (
	"errors"
	"fmt"
	"math"

	"refab-api/internal/model"
)

// ErrNoIssues is returned when a repair estimate is requested with an empty
// issue selection.
var ErrNoIssues = errors.New("no repair issues selected")

const originalScreenFactor = 1.6

// IssueCatalog resolves issue ids to their flat base cost. Satisfied by
// *catalog.Catalog.
type IssueCatalog interface {
	Issue(id model.IssueID) (model.RepairIssue, bool)
}

// Estimate is the outcome of a repair price computation. When
// DiagnosticRequired is set no numeric price applies and the totals are zero.
type Estimate struct {
	StandardTotal                int  `json:"standardTotal"`
	PremiumTotal                 int  `json:"premiumTotal"`
	IncludesOriginalScreenOption bool `json:"includesOriginalScreenOption"`
	DiagnosticRequired           bool `json:"diagnosticRequired"`
}

// TierMultiplier maps a device base value to the repair price multiplier.
// More expensive devices carry more expensive parts and stricter handling,
// so the same flat issue cost scales up with the device class. The 400 and
// 200 boundaries are inclusive.
func TierMultiplier(baseValue int) float64 {
	switch {
	case baseValue > 800:
		return 2.5
	case baseValue >= 400:
		return 1.8
	case baseValue >= 200:
		return 1.2
	default:
		return 1.0
	}
}

// ComputeRepair computes standard and premium repair totals for the selected
// issues on a resolved catalog entry.
//
// The "other" issue is a sentinel: it means a diagnostic is required and no
// numeric price exists, so its presence short-circuits everything else.
// For the screen issue a premium/original-part price of standard x1.6 is
// substituted into PremiumTotal; all non-screen issues contribute the same
// amount to both totals.
func ComputeRepair(entry model.DeviceCatalogEntry, issues []model.IssueID, cat IssueCatalog) (Estimate, error) {
	if len(issues) == 0 {
		return Estimate{}, ErrNoIssues
	}
	for _, id := range issues {
		if id == model.IssueOther {
			return Estimate{DiagnosticRequired: true}, nil
		}
	}

	tier := TierMultiplier(entry.BaseValue)

	var est Estimate
	for _, id := range issues {
		iss, ok := cat.Issue(id)
		if !ok {
			return Estimate{}, fmt.Errorf("unknown repair issue %q", id)
		}
		standard := int(math.Floor(float64(iss.BaseCost) * tier))
		est.StandardTotal += standard
		if id == model.IssueScreen {
			est.IncludesOriginalScreenOption = true
			est.PremiumTotal += int(math.Floor(float64(standard) * originalScreenFactor))
		} else {
			est.PremiumTotal += standard
		}
	}
	return est, nil
}

// SelectedTotal picks the total matching the customer's screen quality
// choice. Quality only matters when the estimate actually carries an
// original-screen option.
func (e Estimate) SelectedTotal(screenQuality string) int {
	if e.IncludesOriginalScreenOption && screenQuality == model.ScreenQualityOriginal {
		return e.PremiumTotal
	}
	return e.StandardTotal
}
