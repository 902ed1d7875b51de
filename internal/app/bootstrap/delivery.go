package bootstrap

import (
	"time"

	"github.com/vitaldent/clinic-site/internal/archive"
	appconfig "github.com/vitaldent/clinic-site/internal/config"
	"github.com/vitaldent/clinic-site/internal/events"
	"github.com/vitaldent/clinic-site/internal/notify"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// BuildEmailSender picks the email provider from EMAIL_PROVIDER. It returns
// the sender, the provider actually used and, on fallback, the reason.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) (notify.EmailSender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	stub := notify.NewStubEmailSender(logger.Component("email"))
	if cfg == nil {
		return stub, "stub", "missing config"
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger.Component("email"))
		if sender == nil {
			return stub, "stub", "SENDGRID_API_KEY not set"
		}
		return sender, "sendgrid", ""
	case "ses":
		if ses == nil {
			return stub, "stub", "ses client unavailable"
		}
		sender := notify.NewSESSender(ses, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger.Component("email"))
		return sender, "ses", ""
	case "", "stub":
		return stub, "stub", ""
	default:
		return stub, "stub", "unknown provider " + cfg.EmailProvider
	}
}

// BuildDeliveryHandler fans appointment events out to the email notifier and,
// when configured, the S3 archive.
func BuildDeliveryHandler(cfg *appconfig.Config, loc *time.Location, sender notify.EmailSender, processed notify.ProcessedTracker, archiveS3 archive.S3API, logger *logging.Logger) events.DeliveryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	notifierCfg := notify.NotifierConfig{Location: loc}
	bucket := ""
	if cfg != nil {
		notifierCfg.ClinicEmail = cfg.NotifyEmail
		notifierCfg.ClinicName = cfg.ClinicName
		bucket = cfg.ArchiveBucket
	}
	handlers := events.Fanout{
		notify.NewAppointmentNotifier(sender, processed, notifierCfg, logger.Component("notifier")),
	}
	if bucket != "" && archiveS3 != nil {
		handlers = append(handlers, archive.NewStore(archiveS3, bucket, logger.Component("archive")))
	}
	return handlers
}
