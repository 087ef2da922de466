package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"horseshipt/config"
	"horseshipt/models"
	"horseshipt/repository"

	"go.uber.org/zap"
)

// Notifier fans shipment events out to email and SMS, honoring the carrier's
// per-event channel preferences. Delivery is best-effort: failures are logged
// and never surfaced to the calling request.
type Notifier struct {
	Users    repository.UserRepository
	Settings repository.SettingsRepository
	Logger   *zap.Logger
	Config   *config.Config

	// HTTPClient is used for the Twilio API; overridable in tests.
	HTTPClient *http.Client
}

func NewNotifier(users repository.UserRepository, settings repository.SettingsRepository, logger *zap.Logger, cfg *config.Config) *Notifier {
	return &Notifier{
		Users:      users,
		Settings:   settings,
		Logger:     logger,
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends the event to the user over every channel their settings allow.
// Customers have no stored settings and receive email only.
func (n *Notifier) Notify(ctx context.Context, userID, event, subject, emailBody, smsBody string) {
	user, err := n.Users.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		n.Logger.Warn("notify: recipient lookup failed",
			zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
		return
	}

	email, sms := true, false
	if user.Role == models.RoleCarrier {
		settings, err := n.Settings.GetByCarrier(ctx, userID)
		if err != nil {
			n.Logger.Warn("notify: settings lookup failed",
				zap.String("user_id", userID), zap.Error(err))
		}
		if settings == nil {
			settings = models.DefaultCarrierSettings(userID)
		}
		toggle := settings.Channels(event)
		email, sms = toggle.Email, toggle.SMS
	}

	if email && user.Email != "" {
		if err := n.sendEmail(user.Email, subject, emailBody); err != nil {
			n.Logger.Warn("notify: email delivery failed",
				zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
		}
	}
	if sms && user.Phone != "" {
		if err := n.sendSMS(ctx, user.Phone, smsBody); err != nil {
			n.Logger.Warn("notify: sms delivery failed",
				zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
		}
	}
}

func (n *Notifier) sendEmail(to, subject, body string) error {
	cfg := n.Config
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp is not configured")
	}

	msg := strings.Join([]string{
		"From: " + cfg.SMTPFrom,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := cfg.SMTPHost + ":" + cfg.SMTPPort
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg))
}

func (n *Notifier) sendSMS(ctx context.Context, to, body string) error {
	cfg := n.Config
	if cfg.TwilioSID == "" || cfg.TwilioToken == "" || cfg.TwilioFrom == "" {
		return fmt.Errorf("twilio is not configured")
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", cfg.TwilioSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", cfg.TwilioFrom)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(cfg.TwilioSID, cfg.TwilioToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}
	return nil
}
