// Package dialogue is the appointment dialogue state machine: it maps the
// resolved intent, the extracted entities and the caller-carried context of
// one turn to the next utterance, stage and context.
package dialogue

// Intent is a label produced by the intent resolver.
type Intent string

const (
	IntentWelcome              Intent = "welcome"
	IntentSchedule             Intent = "schedule"
	IntentReschedule           Intent = "reschedule"
	IntentAppointmentDateMonth Intent = "appointmentDateMonth"
	IntentProvideTime          Intent = "provide_time"
	IntentProvideNameNumber    Intent = "provide_name_number"
	IntentCancel               Intent = "cancel"
	IntentRepeat               Intent = "repeat"
	IntentUnknown              Intent = "unknown"
)

// AllIntents lists every intent the engine dispatches on.
func AllIntents() []Intent {
	return []Intent{
		IntentWelcome,
		IntentSchedule,
		IntentReschedule,
		IntentAppointmentDateMonth,
		IntentProvideTime,
		IntentProvideNameNumber,
		IntentCancel,
		IntentRepeat,
		IntentUnknown,
	}
}

// ParseIntent maps a resolver label to an Intent. Unrecognised labels
// become IntentUnknown.
func ParseIntent(label string) Intent {
	for _, intent := range AllIntents() {
		if string(intent) == label {
			return intent
		}
	}
	return IntentUnknown
}

// Stage is the last completed dialogue step, echoed back as prevIntent.
type Stage string

const (
	StageNone                 Stage = ""
	StageWelcome              Stage = "welcome"
	StageSchedule             Stage = "schedule"
	StageReschedule           Stage = "reschedule"
	StageAppointmentDateMonth Stage = "appointmentDateMonth"
	StageProvideTime          Stage = "provide_time"
	StageProvideNameNumber    Stage = "provide_name_number"
	StageCancel               Stage = "cancel"
)

// Status tells the caller whether the dialogue expects another turn.
type Status string

const (
	StatusContinue Status = "CONTINUE"
	StatusFinish   Status = "FINISH"
)

// EntityType is the vocabulary of extracted entity kinds.
type EntityType string

const (
	EntityDate         EntityType = "date"
	EntityMonth        EntityType = "month"
	EntityTime         EntityType = "time"
	EntityMobileNumber EntityType = "mobile_number"
	EntityName         EntityType = "name"
)

// Entity is a typed value extracted from an utterance.
type Entity struct {
	Type  EntityType `json:"entity"`
	Value string     `json:"value"`
}
