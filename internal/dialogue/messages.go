package dialogue

import "fmt"

const (
	msgAskMobile         = "Sure, please provide me your mobile number."
	msgAskMobileCancel   = "Sure, what's your mobile number."
	msgAskDateMonth      = "Please select a date and month"
	msgAskRescheduleDate = "Please select a date and month for reschedule"
	msgScheduleRejected  = "Unable to process the request, call us later"
	msgMissingDate       = "Sorry, I didn't catch the date. Can you please provide it again?"
	msgMissingMonth      = "Sorry, I didn't catch the month. Can you please provide it again?"
	msgNoSlots           = "No available time slots found."
	msgSlotsUnavailable  = "Sorry, I didn't find any slots for the selected time, please call us later"
	msgMissingTime       = "Sorry, I didn't catch the time slot. Can you please provide again?"
	msgAskNameNumber     = "Okay great! Can I get your phone number and Name?"
	msgMissingNameNumber = "Sorry, I didn't catch your name or phone number. Can you please provide both?"
	msgMissingMobile     = "Sorry, I didn't catch your mobile number. Can you please provide it again?"
	msgSelectionLost     = "Sorry, I lost track of the time slot you picked. Please select a date and month again."
	msgCancelled         = "Your appointment is cancelled"
	msgCancelFailed      = "Error processing your request. Please try again later."
	msgBooked            = "Awesome. I have you set up for that time. To cancel or reschedule, please call us again. See you soon"
	msgBookingFailed     = "Error processing your appointment. Please try again later."
	msgFallback          = "Sorry, I didn't catch that. Could you please say that again?"
	msgNothingToRepeat   = "Sorry, I didn't catch that. How may I assist you today?"
	defaultClinicName    = "Dr. Archer"
)

func greeting(clinicName string) string {
	return fmt.Sprintf("Hello, thanks for calling %s's office. How may I assist you today?", clinicName)
}

func availabilityMessage(times string) string {
	return fmt.Sprintf("I have the following availability %s. When would you like to come in?", times)
}

func noMatchingSlotMessage(timeValue string) string {
	return fmt.Sprintf("Sorry, I couldn't find a matching time slot for %s", timeValue)
}
