package outbox

// Delivery-outcome events published by the notification pipeline.
const (
	EventNotificationSent   = "notification.sent.v1"
	EventNotificationFailed = "notification.failed.v1"
)

// Event is the domain event envelope written to the outbox table in the same
// transaction as the row change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
