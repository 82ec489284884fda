package outbox

// Event types published by the admin API. The Kafka topic name equals the
// event type (one topic per event).
const (
	EventAppointmentBooked    = "scheduling.appointment.booked.v1"
	EventAppointmentCancelled = "scheduling.appointment.cancelled.v1"
)

// Event is the domain event envelope written to the outbox table in the same
// transaction as the row change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
