// Package notifsvc provides core.NotificationService implementations.
// All of them are fire-and-forget: a failed delivery is logged and dropped,
// never surfaced to the state transition that produced it.
package notifsvc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trezcool/udahili/core"
)

type consoleService struct {
	logger core.Logger
}

var _ core.NotificationService = (*consoleService)(nil)

// NewConsoleService returns a sink that writes notifications to the log;
// used in debug mode.
func NewConsoleService(logger core.Logger) core.NotificationService {
	return &consoleService{logger: logger}
}

func (svc consoleService) Notify(userID string, event core.NotificationEvent, payload map[string]interface{}) {
	svc.logger.Info(fmt.Sprintf("notify %s: %s %s", userID, event, FormatPayload(payload)))
}

// FormatPayload renders a payload as sorted key=value pairs for plain text sinks.
func FormatPayload(payload map[string]interface{}) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}
