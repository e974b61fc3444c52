// Package wizard implements the multi-step quote wizard as an explicit,
// serializable state machine. The machine owns forward/back/jump transitions
// and deep-link initialization; it performs no side effects of its own.
// Price display and URL sync are external observers of the State snapshot.
package wizard

import (
	"encoding/json"
	"fmt"
	"net/url"

	"refab-api/internal/catalog"
	"refab-api/internal/model"
)

// Buyback flow steps.
const (
	StepDeviceType = 1 + iota
	StepBrandModel
	StepSpecs
	StepFunctional
	StepCosmetic
	StepEstimate
	StepDelivery
	StepContact
)

// Repair flow steps. The two flows share steps 1-2; the repair flow collapses
// specs/functional/cosmetic into a single issue-selection step.
const (
	StepIssues         = 3
	StepRepairEstimate = 4
	StepRepairDelivery = 5
	StepRepairContact  = 6
)

const (
	buybackSteps = 8
	repairSteps  = 6
)

// Contact holds the final-step customer details.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// State is the full serializable wizard state. Step only ever reflects fields
// that have been populated; a later step is not reachable while a
// prerequisite field is empty, except via a validated deep link.
type State struct {
	Flow           model.QuoteType           `json:"flow"`
	Step           int                       `json:"step"`
	DeviceCategory string                    `json:"deviceCategory,omitempty"`
	Brand          string                    `json:"brand,omitempty"`
	Model          string                    `json:"model,omitempty"`
	Storage        string                    `json:"storage,omitempty"`
	Condition      model.ConditionAssessment `json:"condition"`
	Issues         []model.IssueID           `json:"issues,omitempty"`
	ScreenQuality  string                    `json:"screenQuality,omitempty"`
	DeliveryMethod string                    `json:"deliveryMethod,omitempty"`
	Contact        Contact                   `json:"contact"`
}

// Machine drives a State through the step sequence, consulting the device
// catalog for guard checks. Exactly one mutation is in flight at a time;
// the machine is single-threaded UI state.
type Machine struct {
	cat   *catalog.Catalog
	state State
}

// New creates a machine at step 1 of the given flow.
func New(cat *catalog.Catalog, flow model.QuoteType) (*Machine, error) {
	if !flow.Valid() {
		return nil, fmt.Errorf("unknown wizard flow %q", flow)
	}
	return &Machine{cat: cat, state: State{Flow: flow, Step: 1}}, nil
}

// Restore creates a machine from a previously serialized state, re-validating
// the step position against the populated fields.
func Restore(cat *catalog.Catalog, data []byte) (*Machine, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to restore wizard state: %w", err)
	}
	if !st.Flow.Valid() {
		return nil, fmt.Errorf("unknown wizard flow %q", st.Flow)
	}
	m := &Machine{cat: cat, state: st}
	if st.Step < 1 || st.Step > m.totalSteps() {
		return nil, fmt.Errorf("step %d out of range", st.Step)
	}
	for s := 1; s < st.Step; s++ {
		if err := m.checkStep(s); err != nil {
			return nil, fmt.Errorf("restored state invalid at step %d: %w", s, err)
		}
	}
	return m, nil
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	st := m.state
	st.Issues = append([]model.IssueID(nil), m.state.Issues...)
	return st
}

// Serialize encodes the current state for session persistence.
func (m *Machine) Serialize() ([]byte, error) {
	return json.Marshal(m.state)
}

func (m *Machine) totalSteps() int {
	if m.state.Flow == model.QuoteRepair {
		return repairSteps
	}
	return buybackSteps
}

// checkStep reports whether the completeness predicate for a step holds.
func (m *Machine) checkStep(step int) error {
	st := &m.state
	if st.Flow == model.QuoteRepair {
		switch step {
		case StepDeviceType:
			if st.DeviceCategory == "" {
				return fmt.Errorf("device type not selected")
			}
		case StepBrandModel:
			return m.checkBrandModel()
		case StepIssues:
			if len(st.Issues) == 0 {
				return fmt.Errorf("no issues selected")
			}
		case StepRepairEstimate: // display only
		case StepRepairDelivery:
			if st.DeliveryMethod == "" {
				return fmt.Errorf("delivery method not selected")
			}
		}
		return nil
	}

	switch step {
	case StepDeviceType:
		if st.DeviceCategory == "" {
			return fmt.Errorf("device type not selected")
		}
	case StepBrandModel:
		return m.checkBrandModel()
	case StepSpecs: // storage is optional
	case StepFunctional:
		if !st.Condition.Complete() {
			return fmt.Errorf("functional check incomplete")
		}
	case StepCosmetic:
		if st.Condition.ScreenCondition == "" || st.Condition.BodyCondition == "" {
			return fmt.Errorf("cosmetic check incomplete")
		}
	case StepEstimate: // display only
	case StepDelivery:
		if st.DeliveryMethod == "" {
			return fmt.Errorf("delivery method not selected")
		}
	}
	return nil
}

func (m *Machine) checkBrandModel() error {
	st := &m.state
	if st.Brand == "" || st.Model == "" {
		return fmt.Errorf("brand and model required")
	}
	if _, err := m.cat.Resolve(st.DeviceCategory, st.Brand, st.Model); err != nil {
		return err
	}
	return nil
}

// Next advances one step if the current step's completeness predicate holds.
func (m *Machine) Next() error {
	if m.state.Step >= m.totalSteps() {
		return fmt.Errorf("already at the final step")
	}
	if err := m.checkStep(m.state.Step); err != nil {
		return err
	}
	m.state.Step++
	return nil
}

// Back retreats one step. It never clears already-entered data.
func (m *Machine) Back() {
	if m.state.Step > 1 {
		m.state.Step--
	}
}

// JumpTo moves to an earlier (or the current) step for editing a previous
// answer. Jumping forward is not exposed.
func (m *Machine) JumpTo(step int) error {
	if step < 1 || step > m.state.Step {
		return fmt.Errorf("cannot jump forward to step %d from %d", step, m.state.Step)
	}
	m.state.Step = step
	return nil
}

// Reset returns to step 1 and clears all collected fields.
func (m *Machine) Reset() {
	m.state = State{Flow: m.state.Flow, Step: 1}
}

// InitFromDeepLink pre-fills device identity from URL parameters ("device",
// "brand", "model") and fast-forwards past the selection steps. The triple
// must jointly resolve against the catalog; an invalid deep link is silently
// ignored and the machine stays at step 1.
func (m *Machine) InitFromDeepLink(params url.Values) bool {
	device := params.Get("device")
	brand := params.Get("brand")
	mdl := params.Get("model")
	if device == "" || brand == "" || mdl == "" {
		return false
	}
	entry, err := m.cat.Resolve(device, brand, mdl)
	if err != nil {
		return false
	}
	m.state.DeviceCategory = entry.Category
	m.state.Brand = entry.Brand
	m.state.Model = entry.Model
	m.state.Step = StepIssues // first data-collection step in both flows
	return true
}

// SetDeviceCategory records the step-1 selection.
func (m *Machine) SetDeviceCategory(category string) {
	m.state.DeviceCategory = category
}

// SetBrandModel records the step-2 selection.
func (m *Machine) SetBrandModel(brand, mdl string) {
	m.state.Brand = brand
	m.state.Model = mdl
}

// SetStorage records the storage/spec choice.
func (m *Machine) SetStorage(storage string) {
	m.state.Storage = storage
	m.state.Condition.Storage = storage
}

// Functional-check setters simply overwrite the corresponding field.

func (m *Machine) SetPowersOn(v bool)          { m.state.Condition.PowersOn = &v }
func (m *Machine) SetFullyFunctional(v bool)   { m.state.Condition.FullyFunctional = &v }
func (m *Machine) SetUnlocked(v bool)          { m.state.Condition.IsUnlocked = &v }
func (m *Machine) SetBatteryHealthGood(v bool) { m.state.Condition.BatteryHealthGood = &v }

// SetScreenCondition overwrites the screen cosmetic state.
func (m *Machine) SetScreenCondition(v model.ScreenCondition) {
	m.state.Condition.ScreenCondition = v
}

// SetBodyCondition overwrites the body cosmetic state.
func (m *Machine) SetBodyCondition(v model.BodyCondition) {
	m.state.Condition.BodyCondition = v
}

// SetScreenQuality records the standard-vs-original screen tier choice.
func (m *Machine) SetScreenQuality(q string) {
	m.state.ScreenQuality = q
}

// SetDeliveryMethod records the logistics choice.
func (m *Machine) SetDeliveryMethod(method string) {
	m.state.DeliveryMethod = method
}

// SetContact records the final-step customer details.
func (m *Machine) SetContact(c Contact) {
	m.state.Contact = c
}

// ToggleIssue adds or removes a repair issue from the selection set.
// Selecting "other" clears every other issue; selecting anything else clears
// "other". Toggling an already-selected issue removes it.
func (m *Machine) ToggleIssue(id model.IssueID) {
	for i, existing := range m.state.Issues {
		if existing == id {
			m.state.Issues = append(m.state.Issues[:i], m.state.Issues[i+1:]...)
			return
		}
	}
	if id == model.IssueOther {
		m.state.Issues = []model.IssueID{model.IssueOther}
		return
	}
	filtered := m.state.Issues[:0]
	for _, existing := range m.state.Issues {
		if existing != model.IssueOther {
			filtered = append(filtered, existing)
		}
	}
	m.state.Issues = append(filtered, id)
}
