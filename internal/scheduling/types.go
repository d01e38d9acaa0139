package scheduling

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfman30/appointment-agent/internal/wirejson"
)

// StatusContinue is the statusMessage the backend uses when slots are offered.
const StatusContinue = "CONTINUE"

var (
	// ErrCircuitOpen is returned while the backend breaker rejects calls.
	ErrCircuitOpen = errors.New("scheduling: backend circuit open")
	// ErrMalformedResponse is returned when a reply body cannot be decoded.
	ErrMalformedResponse = errors.New("scheduling: malformed backend response")
)

// StatusError reports a backend reply with an unexpected HTTP status.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scheduling: %s returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("scheduling: %s returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Slot is a bookable time unit. Only Time and DoctorSlotID are interpreted;
// any other backend fields are carried through untouched.
type Slot struct {
	Time         string
	DoctorSlotID string
	Extra        wirejson.Extra
}

type slotWire struct {
	Time         string `json:"time"`
	DoctorSlotID string `json:"doctorSlotId"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(slotWire{Time: s.Time, DoctorSlotID: s.DoctorSlotID})
	if err != nil {
		return nil, err
	}
	return wirejson.Merge(data, s.Extra)
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var w slotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := wirejson.Split(data, "time", "doctorSlotId")
	if err != nil {
		return err
	}
	*s = Slot{Time: w.Time, DoctorSlotID: w.DoctorSlotID, Extra: extra}
	return nil
}

// Availability is the backend reply to a slot query.
type Availability struct {
	StatusMessage string `json:"statusMessage"`
	Results       []Slot `json:"results"`
}

// HasSlots reports whether the backend offered at least one slot.
func (a *Availability) HasSlots() bool {
	return a != nil && a.StatusMessage == StatusContinue && len(a.Results) > 0
}

// Appointment carries everything the backend needs to create a booking.
type Appointment struct {
	DoctorSlotID  string
	Time          string
	Date          string
	PatientName   string
	PatientMobile string
}
