package model

// DeviceCatalogEntry maps a (category, brand, model) triple to the base
// monetary value used as the seed for all pricing.
type DeviceCatalogEntry struct {
	Category  string `json:"category"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	BaseValue int    `json:"baseValue"`
}

// IssueID is a stable repair issue identifier.
type IssueID string

const (
	IssueScreen   IssueID = "screen"
	IssueBattery  IssueID = "battery"
	IssueCharging IssueID = "charging"
	IssueCamera   IssueID = "camera"
	IssueAudio    IssueID = "audio"
	IssueWater    IssueID = "water"

	// IssueOther means "no fixed price, diagnostic required". It is mutually
	// exclusive with every other issue in a single request.
	IssueOther IssueID = "other"
)

// Valid reports whether the id is a known issue identifier.
func (id IssueID) Valid() bool {
	switch id {
	case IssueScreen, IssueBattery, IssueCharging, IssueCamera, IssueAudio, IssueWater, IssueOther:
		return true
	}
	return false
}

// RepairIssue describes a repair issue type with its flat base labor/parts cost.
type RepairIssue struct {
	ID       IssueID `json:"id"`
	Label    string  `json:"label"`
	BaseCost int     `json:"baseCost"`
}
