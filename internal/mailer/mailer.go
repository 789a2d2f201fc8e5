// AngelaMos | 2026
// mailer.go

package mailer

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/carterperez-dev/templates/auth-backend/internal/config"
)

// Mailer sends transactional emails over SMTP. Every send is best-effort
// and at-most-once: failures are logged and never retried, and they never
// fail the request that triggered them.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	appName string
	baseURL string
	logger  *slog.Logger

	// sendFunc is a seam for tests; production uses dialer.DialAndSend.
	sendFunc func(msg *gomail.Message) error
}

func New(
	smtpCfg config.SMTPConfig,
	appCfg config.AppConfig,
	logger *slog.Logger,
) *Mailer {
	dialer := gomail.NewDialer(
		smtpCfg.Host,
		smtpCfg.Port,
		smtpCfg.Username,
		smtpCfg.Password,
	)

	m := &Mailer{
		dialer:  dialer,
		from:    smtpCfg.From,
		appName: appCfg.Name,
		baseURL: appCfg.PublicURL,
		logger:  logger,
	}
	m.sendFunc = func(msg *gomail.Message) error {
		return dialer.DialAndSend(msg)
	}

	return m
}

// dispatch sends asynchronously so a slow relay never stalls the caller.
func (m *Mailer) dispatch(to, subject, html string) {
	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", html)

		if err := m.sendFunc(msg); err != nil {
			m.logger.Error("email send failed",
				"subject", subject,
				"error", err,
			)
			return
		}

		m.logger.Info("email sent", "subject", subject)
	}()
}

func (m *Mailer) VerificationEmail(to, name, token string) {
	link := fmt.Sprintf("%s/verify-email/%s", m.baseURL, token)

	html, err := renderVerification(verificationData{
		AppName: m.appName,
		Name:    displayName(name, to),
		Link:    link,
	})
	if err != nil {
		m.logger.Error("render verification email", "error", err)
		return
	}

	m.dispatch(to, fmt.Sprintf("Verify your %s account", m.appName), html)
}

func (m *Mailer) WelcomeEmail(to, name string) {
	html, err := renderWelcome(welcomeData{
		AppName: m.appName,
		Name:    displayName(name, to),
	})
	if err != nil {
		m.logger.Error("render welcome email", "error", err)
		return
	}

	m.dispatch(to, fmt.Sprintf("Welcome to %s", m.appName), html)
}

func (m *Mailer) LoginAlert(to, name string, at time.Time) {
	html, err := renderLoginAlert(loginAlertData{
		AppName: m.appName,
		Name:    displayName(name, to),
		At:      at.UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		m.logger.Error("render login alert email", "error", err)
		return
	}

	m.dispatch(to, fmt.Sprintf("New sign-in to your %s account", m.appName), html)
}

func (m *Mailer) PasswordResetEmail(to, name, secret string) {
	link := fmt.Sprintf("%s/reset-password/%s", m.baseURL, secret)

	html, err := renderPasswordReset(passwordResetData{
		AppName: m.appName,
		Name:    displayName(name, to),
		Link:    link,
	})
	if err != nil {
		m.logger.Error("render password reset email", "error", err)
		return
	}

	m.dispatch(to, fmt.Sprintf("Reset your %s password", m.appName), html)
}

func (m *Mailer) PasswordChangedEmail(to, name string) {
	html, err := renderPasswordChanged(passwordChangedData{
		AppName: m.appName,
		Name:    displayName(name, to),
	})
	if err != nil {
		m.logger.Error("render password changed email", "error", err)
		return
	}

	m.dispatch(to, fmt.Sprintf("Your %s password was changed", m.appName), html)
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
