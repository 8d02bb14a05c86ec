package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// LeadNotifier texts the site owner whenever a visitor unlocks a project.
type LeadNotifier struct {
	messages messageCreator
	from     string
	to       string
}

// NewLeadNotifier returns nil when Twilio is not fully configured.
func NewLeadNotifier(accountSID, authToken, from, to string) *LeadNotifier {
	if accountSID == "" || authToken == "" || from == "" || to == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &LeadNotifier{messages: client.Api, from: from, to: to}
}

func (n *LeadNotifier) NotifyLead(_ context.Context, lead models.Lead) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(LeadSMSBody(lead))

	resp, err := n.messages.CreateMessage(params)
	if err != nil {
		return errs.NewDeliveryError("sms", err)
	}
	if resp != nil && resp.Sid != nil {
		log.Debug().Str("sid", *resp.Sid).Msg("lead notification sent")
	}
	return nil
}

func LeadSMSBody(lead models.Lead) string {
	return fmt.Sprintf("New lead for %s: %s, %s", lead.ProjectName, lead.Email, lead.Phone)
}
