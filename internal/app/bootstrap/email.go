package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/slotwise/slotwise/internal/config"
	"github.com/slotwise/slotwise/internal/mailer"
	"github.com/slotwise/slotwise/pkg/logging"
)

// BuildEmailSender selects the configured email backend, falling back to the
// logging stub when the provider is unset or misconfigured.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) mailer.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		sender := mailer.NewSendGridSender(mailer.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			logger.Info("sendgrid email sender initialized")
			return sender
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY not set, using stub sender")
	case "ses":
		sender := mailer.NewSESSender(sesClient, mailer.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			logger.Info("SES email sender initialized")
			return sender
		}
		logger.Warn("ses selected but SES client unavailable, using stub sender")
	}

	return mailer.NewStubEmailSender(logger)
}
