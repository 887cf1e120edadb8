package dummynotif

import (
	"sync"

	"github.com/trezcool/udahili/core"
)

// Service records notifications in memory for tests.
type Service struct {
	mu   sync.Mutex
	sent []core.Notification
}

var _ core.NotificationService = (*Service)(nil)

func NewService() *Service {
	return &Service{}
}

func (svc *Service) Notify(userID string, event core.NotificationEvent, payload map[string]interface{}) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = append(svc.sent, core.Notification{UserID: userID, Event: event, Payload: payload})
}

// Sent returns a copy of all recorded notifications.
func (svc *Service) Sent() []core.Notification {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.Notification, len(svc.sent))
	copy(out, svc.sent)
	return out
}

// SentTo returns all notifications recorded for a given user.
func (svc *Service) SentTo(userID string) []core.Notification {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	var out []core.Notification
	for _, n := range svc.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// Reset clears all recorded notifications.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
