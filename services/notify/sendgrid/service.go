package sendgridnotif

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/udahili/core"
	notifsvc "github.com/trezcool/udahili/services/notify"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

var subjects = map[core.NotificationEvent]string{
	core.EventApplicationReceived:   "Application received",
	core.EventApplicationAdmitted:   "You have been admitted",
	core.EventApplicationRejected:   "Application update",
	core.EventApplicationWaitlisted: "You are on the waiting list",
	core.EventOfferAccepted:         "Offer accepted",
	core.EventQualifiedCandidate:    "A qualified candidate applied",
}

// AddressResolver maps a user ID to a deliverable email address.
type AddressResolver interface {
	AddressFor(userID string) (mail.Address, error)
}

type service struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	resolver   AddressResolver
	logger     core.Logger
}

var _ core.NotificationService = (*service)(nil)

func NewService(conf *core.Config, resolver AddressResolver, logger core.Logger) core.NotificationService {
	return &service{
		key:        conf.SendgridAPIKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		resolver:   resolver,
		logger:     logger,
	}
}

func (svc *service) Notify(userID string, event core.NotificationEvent, payload map[string]interface{}) {
	go svc.send(userID, event, payload)
}

func (svc *service) send(userID string, event core.NotificationEvent, payload map[string]interface{}) {
	addr, err := svc.resolver.AddressFor(userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notify %s: no address for recipient: %v", userID, err))
		return
	}

	subject, ok := subjects[event]
	if !ok {
		subject = string(event)
	}

	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + subject
	p.AddTos(sgmail.NewEmail(addr.Name, addr.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", subject+"\r\n\r\n"+notifsvc.FormatPayload(payload)))

	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notify %s: sending %s", userID, event), err)
		return
	}
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("notify %s: sending %s: status %d", userID, event, res.StatusCode))
	}
}
