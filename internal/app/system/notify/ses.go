// internal/app/system/notify/ses.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// SESSender delivers notifications by email through Amazon SES v2. The
// target's address must arrive in the event's "email" field; events
// without one are skipped, since address resolution belongs to the
// identity service, not this core.
type SESSender struct {
	client   *sesv2.Client
	from     string
	fromName string
	log      *zap.Logger
}

// NewSESSender builds an SES-backed sender using the default AWS
// credential chain.
func NewSESSender(ctx context.Context, region, fromEmail, fromName string, logger *zap.Logger) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SESSender{
		client:   sesv2.NewFromConfig(cfg),
		from:     fromEmail,
		fromName: fromName,
		log:      logger,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, ev Event) error {
	to := ev.Fields[FieldEmail]
	if to == "" {
		s.log.Debug("notification has no email address, skipping",
			zap.String("event_id", ev.ID),
			zap.String("kind", ev.Kind))
		return nil
	}

	subject, body := composeEmail(ev)
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func composeEmail(ev Event) (subject, body string) {
	family := ev.Fields[FieldFamilyName]
	member := ev.Fields[FieldMemberName]

	switch ev.Kind {
	case EventMemberAdded:
		subject = fmt.Sprintf("%s was added to %s", member, family)
		body = fmt.Sprintf("%s is now part of the %s tree.\n", member, family)
	case EventMemberUpdated:
		subject = fmt.Sprintf("%s was updated in %s", member, family)
		body = fmt.Sprintf("The record for %s in %s changed.\n", member, family)
	case EventMemberDeleted:
		subject = fmt.Sprintf("%s was removed from %s", member, family)
		body = fmt.Sprintf("%s is no longer part of the %s tree.\n", member, family)
	case EventFamiliesLinked:
		subject = fmt.Sprintf("%s is now linked with %s", family, ev.Fields[FieldLinkedFamilyName])
		body = fmt.Sprintf("Your tree %s and %s are now connected. Members of each tree appear in the other.\n",
			family, ev.Fields[FieldLinkedFamilyName])
	default:
		subject = "Family tree update"
		body = fmt.Sprintf("Event: %s\n", ev.Kind)
	}
	return subject, body
}
