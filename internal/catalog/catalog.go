// Package catalog provides read-only access to the device and issue catalogs.
// The engine only requires synchronous, already-resolved read access at
// calculation time; the snapshot is loaded once at startup (embedded default
// or a file override) and never mutated afterwards, so it is safe for
// concurrent readers.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"refab-api/internal/model"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// ErrUnknownDevice indicates a catalog lookup miss. On the server path this
// is fatal for the request: a price cannot be verified for an unknown device.
type ErrUnknownDevice struct {
	Category string
	Brand    string
	Model    string
}

func (e *ErrUnknownDevice) Error() string {
	return fmt.Sprintf("unknown device: category=%q brand=%q model=%q", e.Category, e.Brand, e.Model)
}

// rawCatalog mirrors the JSON snapshot layout: category -> brand -> model -> baseValue.
type rawCatalog struct {
	Devices map[string]map[string]map[string]int `json:"devices"`
	Storage map[string][]string                  `json:"storage"`
	Issues  []model.RepairIssue                  `json:"issues"`
}

// Catalog is the immutable device/issue lookup table.
type Catalog struct {
	devices map[string]map[string]map[string]int
	storage map[string][]string
	issues  []model.RepairIssue
	byIssue map[model.IssueID]model.RepairIssue
}

// Load builds a catalog from the embedded snapshot, or from the file at
// path when non-empty.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		data = b
		log.Printf("[Catalog] Loaded snapshot from %s", path)
	}
	return Parse(data)
}

// Parse builds a catalog from a JSON snapshot.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(raw.Devices) == 0 {
		return nil, fmt.Errorf("catalog has no devices")
	}

	c := &Catalog{
		devices: raw.Devices,
		storage: raw.Storage,
		issues:  raw.Issues,
		byIssue: make(map[model.IssueID]model.RepairIssue, len(raw.Issues)),
	}
	for _, iss := range raw.Issues {
		if !iss.ID.Valid() {
			return nil, fmt.Errorf("catalog has unknown issue id %q", iss.ID)
		}
		if iss.BaseCost < 0 {
			return nil, fmt.Errorf("issue %q has negative base cost", iss.ID)
		}
		c.byIssue[iss.ID] = iss
	}
	for cat, brands := range raw.Devices {
		for brand, models := range brands {
			for mdl, base := range models {
				if base < 0 {
					return nil, fmt.Errorf("device %s/%s/%s has negative base value", cat, brand, mdl)
				}
			}
		}
	}
	return c, nil
}

// Resolve looks up the catalog entry for a (category, brand, model) triple.
// Matching is case-insensitive; the returned entry carries the canonical
// catalog spelling.
func (c *Catalog) Resolve(category, brand, mdl string) (model.DeviceCatalogEntry, error) {
	for cat, brands := range c.devices {
		if !strings.EqualFold(cat, category) {
			continue
		}
		for b, models := range brands {
			if !strings.EqualFold(b, brand) {
				continue
			}
			for m, base := range models {
				if strings.EqualFold(m, mdl) {
					return model.DeviceCatalogEntry{Category: cat, Brand: b, Model: m, BaseValue: base}, nil
				}
			}
		}
	}
	return model.DeviceCatalogEntry{}, &ErrUnknownDevice{Category: category, Brand: brand, Model: mdl}
}

// ResolveByBrandModel infers the category from a (brand, model) pair.
// Used when a submission omits the device type.
func (c *Catalog) ResolveByBrandModel(brand, mdl string) (model.DeviceCatalogEntry, error) {
	for cat, brands := range c.devices {
		for b, models := range brands {
			if !strings.EqualFold(b, brand) {
				continue
			}
			for m, base := range models {
				if strings.EqualFold(m, mdl) {
					return model.DeviceCatalogEntry{Category: cat, Brand: b, Model: m, BaseValue: base}, nil
				}
			}
		}
	}
	return model.DeviceCatalogEntry{}, &ErrUnknownDevice{Brand: brand, Model: mdl}
}

// StorageOptions returns the valid storage labels for a model, or nil when
// the model has no configurable storage.
func (c *Catalog) StorageOptions(mdl string) []string {
	for m, opts := range c.storage {
		if strings.EqualFold(m, mdl) {
			out := make([]string, len(opts))
			copy(out, opts)
			return out
		}
	}
	return nil
}

// Issues returns the repair issue table.
func (c *Catalog) Issues() []model.RepairIssue {
	out := make([]model.RepairIssue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Issue looks up a single issue by id.
func (c *Catalog) Issue(id model.IssueID) (model.RepairIssue, bool) {
	iss, ok := c.byIssue[id]
	return iss, ok
}

// Categories returns the sorted device category names.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.devices))
	for cat := range c.devices {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Brands returns the sorted brand names within a category.
func (c *Catalog) Brands(category string) []string {
	for cat, brands := range c.devices {
		if strings.EqualFold(cat, category) {
			out := make([]string, 0, len(brands))
			for b := range brands {
				out = append(out, b)
			}
			sort.Strings(out)
			return out
		}
	}
	return nil
}

// Models returns the sorted model names for a category/brand pair.
func (c *Catalog) Models(category, brand string) []string {
	for cat, brands := range c.devices {
		if !strings.EqualFold(cat, category) {
			continue
		}
		for b, models := range brands {
			if strings.EqualFold(b, brand) {
				out := make([]string, 0, len(models))
				for m := range models {
					out = append(out, m)
				}
				sort.Strings(out)
				return out
			}
		}
	}
	return nil
}
