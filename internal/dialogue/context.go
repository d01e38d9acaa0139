package dialogue

import (
	"encoding/json"

	"github.com/wolfman30/appointment-agent/internal/scheduling"
	"github.com/wolfman30/appointment-agent/internal/wirejson"
)

// Context is the conversation state the caller echoes back every turn.
// Members it does not declare are kept in Extra.
type Context struct {
	PrevIntent     Stage             `json:"prevIntent,omitempty"`
	Res            string            `json:"res,omitempty"`
	DateMonth      string            `json:"date_month,omitempty"`
	AvailableSlots []scheduling.Slot `json:"available_slots,omitempty"`
	TimeValue      string            `json:"time_value,omitempty"`
	DoctorSlotID   string            `json:"doctor_slot_id,omitempty"`
	Name           string            `json:"name,omitempty"`
	MobileNumber   string            `json:"mobile_number,omitempty"`

	Extra wirejson.Extra `json:"-"`
}

var contextKeys = []string{
	"prevIntent", "res", "date_month", "available_slots",
	"time_value", "doctor_slot_id", "name", "mobile_number",
}

type contextAlias Context

func (c Context) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(contextAlias(c))
	if err != nil {
		return nil, err
	}
	return wirejson.Merge(data, c.Extra)
}

func (c *Context) UnmarshalJSON(data []byte) error {
	var alias contextAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := wirejson.Split(data, contextKeys...)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*c = Context(alias)
	return nil
}

// TurnResponse is the engine output for one turn. Context fields are only
// set when a later stage needs them.
type TurnResponse struct {
	PrevIntent     Stage             `json:"prevIntent"`
	Res            string            `json:"res"`
	StatusCode     int               `json:"status_code"`
	StatusMessage  Status            `json:"status_message"`
	DateMonth      string            `json:"date_month,omitempty"`
	AvailableSlots []scheduling.Slot `json:"available_slots,omitempty"`
	TimeValue      string            `json:"time_value,omitempty"`
	DoctorSlotID   string            `json:"doctor_slot_id,omitempty"`
	Name           string            `json:"name,omitempty"`
	MobileNumber   string            `json:"mobile_number,omitempty"`

	Extra wirejson.Extra `json:"-"`
}

type turnResponseAlias TurnResponse

func (t TurnResponse) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(turnResponseAlias(t))
	if err != nil {
		return nil, err
	}
	return wirejson.Merge(data, t.Extra)
}

// Finished reports whether the dialogue reached a terminal outcome.
func (t TurnResponse) Finished() bool {
	return t.StatusMessage == StatusFinish
}

// NextContext is the context a well-behaved caller sends with the next turn.
func (t TurnResponse) NextContext() Context {
	return Context{
		PrevIntent:     t.PrevIntent,
		Res:            t.Res,
		DateMonth:      t.DateMonth,
		AvailableSlots: t.AvailableSlots,
		TimeValue:      t.TimeValue,
		DoctorSlotID:   t.DoctorSlotID,
		Name:           t.Name,
		MobileNumber:   t.MobileNumber,
		Extra:          t.Extra.Clone(),
	}
}
