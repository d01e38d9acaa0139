package dialogue

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/appointment-agent/internal/scheduling"
	"github.com/wolfman30/appointment-agent/pkg/logging"
)

// Backend is the subset of the scheduling backend the engine calls.
type Backend interface {
	AvailableSlots(ctx context.Context, dateMonth string) (*scheduling.Availability, error)
	CancelByMobile(ctx context.Context, mobile string) error
	CreateAppointment(ctx context.Context, appt scheduling.Appointment) error
}

// Turn is everything the engine knows about one inbound turn. It is built per
// call and never stored.
type Turn struct {
	Intent   Intent
	Entities []Entity
	Context  Context
}

type transitionFunc func(ctx context.Context, turn Turn) TurnResponse

// Engine routes each turn by intent, guarded by the previous stage.
// It holds no per-conversation state and is safe for concurrent use.
type Engine struct {
	backend    Backend
	clinicName string
	logger     *logging.Logger
	table      map[Intent]transitionFunc
}

// NewEngine creates a dialogue engine calling backend for slot lookups,
// cancellations and bookings.
func NewEngine(backend Backend, clinicName string, logger *logging.Logger) *Engine {
	if backend == nil {
		panic("dialogue: backend cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(clinicName) == "" {
		clinicName = defaultClinicName
	}
	e := &Engine{
		backend:    backend,
		clinicName: clinicName,
		logger:     logger.Component("dialogue"),
	}
	e.table = map[Intent]transitionFunc{
		IntentWelcome:              e.welcome,
		IntentSchedule:             e.schedule,
		IntentReschedule:           e.reschedule,
		IntentAppointmentDateMonth: e.appointmentDateMonth,
		IntentProvideTime:          e.provideTime,
		IntentProvideNameNumber:    e.provideNameNumber,
		IntentCancel:               e.cancel,
		IntentRepeat:               e.repeat,
		IntentUnknown:              e.fallback,
	}
	return e
}

// Welcome returns the fixed greeting turn.
func (e *Engine) Welcome() TurnResponse {
	return cont(StageWelcome, greeting(e.clinicName))
}

// Transition produces the response for one turn. Entity extraction only ever
// looks at the entities passed in.
func (e *Engine) Transition(ctx context.Context, intent Intent, entities []Entity, dctx Context) TurnResponse {
	turn := Turn{Intent: intent, Entities: entities, Context: dctx}
	fn, ok := e.table[intent]
	if !ok {
		e.logger.Error("no transition registered for intent", "intent", string(intent))
		fn = e.fallback
	}
	resp := fn(ctx, turn)
	e.logger.Debug("dialogue transition",
		"intent", string(intent),
		"prev_stage", string(dctx.PrevIntent),
		"next_stage", string(resp.PrevIntent),
		"status", string(resp.StatusMessage),
	)
	return resp
}

func (e *Engine) welcome(_ context.Context, _ Turn) TurnResponse {
	return e.Welcome()
}

func (e *Engine) reschedule(_ context.Context, _ Turn) TurnResponse {
	return cont(StageReschedule, msgAskMobile)
}

func (e *Engine) cancel(_ context.Context, _ Turn) TurnResponse {
	return cont(StageCancel, msgAskMobileCancel)
}

func (e *Engine) schedule(_ context.Context, turn Turn) TurnResponse {
	if turn.Context.PrevIntent != StageWelcome {
		return finish(StageSchedule, msgScheduleRejected, http.StatusOK)
	}
	return cont(StageSchedule, msgAskDateMonth)
}

func (e *Engine) appointmentDateMonth(ctx context.Context, turn Turn) TurnResponse {
	date, ok := firstEntity(turn.Entities, EntityDate)
	if !ok {
		return reprompt(turn.Context, StageAppointmentDateMonth, msgMissingDate)
	}
	month, ok := firstEntity(turn.Entities, EntityMonth)
	if !ok {
		return reprompt(turn.Context, StageAppointmentDateMonth, msgMissingMonth)
	}

	dateMonth := date + "/" + month
	availability, err := e.backend.AvailableSlots(ctx, dateMonth)
	if err != nil {
		e.logger.Warn("slot lookup failed", "date_month", dateMonth, "error", err)
		return finish(StageAppointmentDateMonth, msgSlotsUnavailable, http.StatusInternalServerError)
	}
	if !availability.HasSlots() {
		return finish(StageAppointmentDateMonth, msgNoSlots, http.StatusOK)
	}

	resp := cont(StageAppointmentDateMonth, availabilityMessage(slotTimes(availability.Results)))
	resp.DateMonth = dateMonth
	resp.AvailableSlots = availability.Results
	return resp
}

func (e *Engine) provideTime(ctx context.Context, turn Turn) TurnResponse {
	if turn.Context.PrevIntent != StageAppointmentDateMonth {
		return e.fallback(ctx, turn)
	}

	timeValue, _ := firstEntity(turn.Entities, EntityTime)
	timeValue = NormalizeTime(timeValue)
	if timeValue == "" || turn.Context.DateMonth == "" || len(turn.Context.AvailableSlots) == 0 {
		return reprompt(turn.Context, StageAppointmentDateMonth, msgMissingTime)
	}

	slot, matched := MatchSlot(turn.Context.AvailableSlots, timeValue)
	if !matched {
		resp := finish(StageProvideTime, noMatchingSlotMessage(timeValue), http.StatusOK)
		resp.TimeValue = timeValue
		resp.DateMonth = turn.Context.DateMonth
		return resp
	}

	resp := cont(StageProvideTime, msgAskNameNumber)
	resp.TimeValue = timeValue
	resp.DateMonth = turn.Context.DateMonth
	resp.DoctorSlotID = slot.DoctorSlotID
	return resp
}

func (e *Engine) provideNameNumber(ctx context.Context, turn Turn) TurnResponse {
	switch turn.Context.PrevIntent {
	case StageCancel, StageReschedule:
		return e.cancelByMobile(ctx, turn)
	case StageProvideTime:
		return e.book(ctx, turn)
	default:
		return e.fallback(ctx, turn)
	}
}

func (e *Engine) cancelByMobile(ctx context.Context, turn Turn) TurnResponse {
	mobile, ok := firstEntity(turn.Entities, EntityMobileNumber)
	if !ok {
		return reprompt(turn.Context, turn.Context.PrevIntent, msgMissingMobile)
	}

	if err := e.backend.CancelByMobile(ctx, mobile); err != nil {
		e.logger.Warn("cancellation failed", "mobile", logging.MaskPhone(mobile), "error", err)
		return finish(StageProvideNameNumber, msgCancelFailed, http.StatusInternalServerError)
	}

	if turn.Context.PrevIntent == StageReschedule {
		return cont(StageSchedule, msgAskRescheduleDate)
	}
	return finish(StageProvideNameNumber, msgCancelled, http.StatusOK)
}

func (e *Engine) book(ctx context.Context, turn Turn) TurnResponse {
	dctx := turn.Context
	if dctx.DoctorSlotID == "" || dctx.TimeValue == "" || dctx.DateMonth == "" {
		return cont(StageSchedule, msgSelectionLost)
	}

	name, hasName := firstEntity(turn.Entities, EntityName)
	if !hasName && dctx.Name != "" {
		name, hasName = dctx.Name, true
	}
	mobile, hasMobile := firstEntity(turn.Entities, EntityMobileNumber)
	if !hasMobile && dctx.MobileNumber != "" {
		mobile, hasMobile = dctx.MobileNumber, true
	}

	if !hasName || !hasMobile {
		resp := cont(StageProvideTime, msgMissingNameNumber)
		resp.TimeValue = dctx.TimeValue
		resp.DateMonth = dctx.DateMonth
		resp.DoctorSlotID = dctx.DoctorSlotID
		resp.Name = name
		resp.MobileNumber = mobile
		return resp
	}

	err := e.backend.CreateAppointment(ctx, scheduling.Appointment{
		DoctorSlotID:  dctx.DoctorSlotID,
		Time:          strings.ReplaceAll(dctx.TimeValue, " ", ""),
		Date:          dctx.DateMonth,
		PatientName:   name,
		PatientMobile: mobile,
	})
	if err != nil {
		e.logger.Warn("appointment creation failed",
			"doctor_slot_id", dctx.DoctorSlotID,
			"mobile", logging.MaskPhone(mobile),
			"error", err,
		)
		return finish(StageProvideNameNumber, msgBookingFailed, http.StatusInternalServerError)
	}
	return finish(StageProvideNameNumber, msgBooked, http.StatusOK)
}

// repeat says the previous utterance again and leaves the context untouched.
func (e *Engine) repeat(_ context.Context, turn Turn) TurnResponse {
	text := turn.Context.Res
	if text == "" {
		text = msgNothingToRepeat
	}
	return echo(turn.Context, text)
}

func (e *Engine) fallback(_ context.Context, turn Turn) TurnResponse {
	return echo(turn.Context, msgFallback)
}

// reprompt asks again at stage while keeping everything the caller sent.
func reprompt(dctx Context, stage Stage, text string) TurnResponse {
	resp := echo(dctx, text)
	resp.PrevIntent = stage
	return resp
}

func echo(dctx Context, text string) TurnResponse {
	return TurnResponse{
		PrevIntent:     dctx.PrevIntent,
		Res:            text,
		StatusCode:     http.StatusOK,
		StatusMessage:  StatusContinue,
		DateMonth:      dctx.DateMonth,
		AvailableSlots: dctx.AvailableSlots,
		TimeValue:      dctx.TimeValue,
		DoctorSlotID:   dctx.DoctorSlotID,
		Name:           dctx.Name,
		MobileNumber:   dctx.MobileNumber,
		Extra:          dctx.Extra.Clone(),
	}
}

func cont(stage Stage, text string) TurnResponse {
	return TurnResponse{
		PrevIntent:    stage,
		Res:           text,
		StatusCode:    http.StatusOK,
		StatusMessage: StatusContinue,
	}
}

func finish(stage Stage, text string, statusCode int) TurnResponse {
	return TurnResponse{
		PrevIntent:    stage,
		Res:           text,
		StatusCode:    statusCode,
		StatusMessage: StatusFinish,
	}
}
