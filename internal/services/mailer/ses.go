package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"qslgen/internal/services"
)

// SESAPI is the subset of the SES v2 client used for delivery.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends raw MIME messages through Amazon SES.
type SESSender struct {
	client SESAPI
	from   mail.Address
	now    func() time.Time
}

// NewSESSender loads the default AWS configuration for region and returns a sender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName string) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region = strings.TrimSpace(region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "mailer", "load aws config", "", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), fromAddress, fromName)
}

// NewSESSenderWithClient builds a sender around an existing client.
func NewSESSenderWithClient(client SESAPI, fromAddress, fromName string) (*SESSender, error) {
	from, err := mail.ParseAddress(strings.TrimSpace(fromAddress))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "mailer", "new", fmt.Sprintf("from address %q", fromAddress), err)
	}
	if name := strings.TrimSpace(fromName); name != "" {
		from.Name = name
	}
	return &SESSender{client: client, from: *from, now: time.Now}, nil
}

// Send delivers msg as a raw email.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	raw, err := BuildRaw(s.from, msg, s.now())
	if err != nil {
		return services.Wrap(services.ErrValidation, "mailer", "build message", msg.To, err)
	}
	from := s.from.Address
	_, err = s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "mailer", "SES SendEmail", msg.To, err)
	}
	return nil
}
