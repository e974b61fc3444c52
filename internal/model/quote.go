package model

import "time"

// QuoteType discriminates the two pricing flows.
type QuoteType string

const (
	QuoteBuyback QuoteType = "buyback"
	QuoteRepair  QuoteType = "repair"
)

// Valid reports whether the type is a known flow.
func (t QuoteType) Valid() bool {
	return t == QuoteBuyback || t == QuoteRepair
}

// ScreenCondition is the cosmetic state of the display.
type ScreenCondition string

const (
	ScreenFlawless  ScreenCondition = "flawless"
	ScreenScratched ScreenCondition = "scratched"
	ScreenCracked   ScreenCondition = "cracked"
)

// BodyCondition is the cosmetic state of the housing.
type BodyCondition string

const (
	BodyFlawless  BodyCondition = "flawless"
	BodyScratched BodyCondition = "scratched"
	BodyDented    BodyCondition = "dented"
	BodyBent      BodyCondition = "bent"
)

// ConditionAssessment holds the buyback condition answers. The three boolean
// answers are tri-state (nil = not answered yet) and must all be set before
// a price may be finalized.
type ConditionAssessment struct {
	PowersOn          *bool           `json:"powersOn"`
	FullyFunctional   *bool           `json:"fullyFunctional"`
	IsUnlocked        *bool           `json:"isUnlocked"`
	BatteryHealthGood *bool           `json:"batteryHealthGood"`
	ScreenCondition   ScreenCondition `json:"screenCondition,omitempty"`
	BodyCondition     BodyCondition   `json:"bodyCondition,omitempty"`
	Storage           string          `json:"storage,omitempty"`
}

// Complete reports whether all three required boolean answers are set.
func (c *ConditionAssessment) Complete() bool {
	return c != nil && c.PowersOn != nil && c.FullyFunctional != nil && c.IsUnlocked != nil
}

// ScreenQuality selects which repair screen tier the customer chose.
const (
	ScreenQualityGeneric  = "generic"
	ScreenQualityOriginal = "original"
)

// Delivery methods accepted on order submission.
const (
	DeliveryDropoff = "dropoff"
	DeliverySend    = "send"
	DeliveryCourier = "courier"
)

// PriceQuoteRequest is the payload crossing the client -> server boundary.
// Price is the client-declared price and is untrusted until matched against
// a server recomputation; a pointer distinguishes "missing" from a declared
// price of zero.
type PriceQuoteRequest struct {
	Type                  QuoteType            `json:"type"`
	DeviceType            string               `json:"deviceType,omitempty"`
	Brand                 string               `json:"brand"`
	Model                 string               `json:"model"`
	Condition             *ConditionAssessment `json:"condition,omitempty"`
	Issues                []IssueID            `json:"issues,omitempty"`
	Storage               string               `json:"storage,omitempty"`
	Price                 *float64             `json:"price"`
	SelectedScreenQuality string               `json:"selectedScreenQuality,omitempty"`
	DeliveryMethod        string               `json:"deliveryMethod"`
	CustomerName          string               `json:"customerName"`
	CustomerEmail         string               `json:"customerEmail"`
	CustomerPhone         string               `json:"customerPhone"`
	CustomerAddress       string               `json:"customerAddress,omitempty"`
	CustomerCity          string               `json:"customerCity,omitempty"`
	CustomerZip           string               `json:"customerZip,omitempty"`
	IsCompany             bool                 `json:"isCompany,omitempty"`
	Language              string               `json:"language,omitempty"`
	PartnerID             string               `json:"partnerId,omitempty"`
}

// Quote is the persisted record of a verified submission. It is only ever
// created after server-side verification succeeds. Status transitions past
// "created" are owned by the order-management side, not this engine.
type Quote struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	TrackingToken  string    `json:"trackingToken"`
	Type           QuoteType `json:"type"`
	DeviceCategory string    `json:"deviceCategory"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	Storage        string    `json:"storage,omitempty"`
	SelectionsJSON []byte    `json:"-"`
	Diagnostic     bool      `json:"diagnostic"`
	VerifiedPrice  int       `json:"verifiedPrice"`
	ScreenQuality  string    `json:"screenQuality,omitempty"`
	DeliveryMethod string    `json:"deliveryMethod"`
	CustomerName   string    `json:"customerName"`
	CustomerEmail  string    `json:"customerEmail"`
	CustomerPhone  string    `json:"customerPhone"`
	CustomerAddr   string    `json:"customerAddress,omitempty"`
	CustomerCity   string    `json:"customerCity,omitempty"`
	CustomerZip    string    `json:"customerZip,omitempty"`
	IsCompany      bool      `json:"isCompany"`
	Language       string    `json:"language,omitempty"`
	PartnerID      string    `json:"partnerId,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// QuoteStatusCreated is the only status this engine ever writes.
const QuoteStatusCreated = "created"
