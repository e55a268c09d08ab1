package mailer

import (
	"context"
	"fmt"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/pkg/config"
	"volunteer-slots/internal/pkg/errs"

	"github.com/mrz1836/postmark"
)

// PostmarkGateway sends notifications through Postmark's transactional
// API. A send is successful only when the provider hands back a concrete
// message id.
type PostmarkGateway struct {
	client *postmark.Client
	sender string
}

// NewPostmarkGateway fails fast on missing credentials: a half-configured
// mailer is a configuration error, never a retryable delivery error.
func NewPostmarkGateway(cfg config.MailerConfig) (*PostmarkGateway, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, errs.Mark(errs.New("POSTMARK_SERVER_TOKEN is required"), errs.ErrMailerNotConfigured)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, errs.Mark(errs.New("POSTMARK_ACCOUNT_TOKEN is required"), errs.ErrMailerNotConfigured)
	}
	if cfg.SenderEmail == "" {
		return nil, errs.Mark(errs.New("MAILER_SENDER_EMAIL is required"), errs.ErrMailerNotConfigured)
	}

	return &PostmarkGateway{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		sender: cfg.SenderEmail,
	}, nil
}

func (g *PostmarkGateway) Send(ctx context.Context, req notification.Request) (string, error) {
	resp, err := g.client.SendEmail(ctx, postmark.Email{
		From:     g.sender,
		To:       req.Recipient,
		Subject:  req.Subject,
		Tag:      req.Type.String(),
		HTMLBody: req.BodyHTML,
	})
	if err != nil {
		return "", errs.Wrap(err, "postmark send failed")
	}
	if resp.ErrorCode > 0 {
		return "", fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	if resp.MessageID == "" {
		return "", errs.New("postmark returned no message id")
	}
	return resp.MessageID, nil
}
