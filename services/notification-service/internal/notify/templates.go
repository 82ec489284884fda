package notify

import "fmt"

// Booking is the appointment payload carried on scheduling.appointment.*
// events.
type Booking struct {
	AppointmentID string `json:"appointment_id"`
	Client        string `json:"client"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Display       string `json:"display"`
	Status        string `json:"status"`
	ChatSessionID string `json:"chat_session_id"`
}

func (b Booking) when() string {
	if b.Display != "" {
		return b.Date + " at " + b.Display
	}
	return b.Date + " at " + b.Time
}

func ConfirmationSubject(b Booking) string {
	return "Your appointment is confirmed"
}

func ConfirmationBody(b Booking) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour appointment on %s is confirmed.\n\nIf you need to reschedule, reply to this email.\n",
		b.Name, b.when(),
	)
}

func CancellationSubject(b Booking) string {
	return "Your appointment was cancelled"
}

func CancellationBody(b Booking) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour appointment on %s has been cancelled.\n\nYou can book a new time whenever suits you.\n",
		b.Name, b.when(),
	)
}

func ConfirmationSMS(b Booking) string {
	return fmt.Sprintf("Your appointment on %s is confirmed.", b.when())
}

func CancellationSMS(b Booking) string {
	return fmt.Sprintf("Your appointment on %s was cancelled.", b.when())
}
