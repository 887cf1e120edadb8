package core

type NotificationEvent string

const (
	EventApplicationReceived   NotificationEvent = "application.received"
	EventApplicationAdmitted   NotificationEvent = "application.admitted"
	EventApplicationRejected   NotificationEvent = "application.rejected"
	EventApplicationWaitlisted NotificationEvent = "application.waitlisted"
	EventOfferAccepted         NotificationEvent = "offer.accepted"
	EventQualifiedCandidate    NotificationEvent = "job.qualified_candidate"
)

// Notification is a single user-facing event.
type Notification struct {
	UserID  string
	Event   NotificationEvent
	Payload map[string]interface{}
}

// NotificationService is any service that can deliver user notifications.
// Delivery is fire-and-forget: implementations must not block the caller and
// must swallow (log) delivery failures; a failed notification never rolls back
// the state change that produced it.
type NotificationService interface {
	Notify(userID string, event NotificationEvent, payload map[string]interface{})
}
