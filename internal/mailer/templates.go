// AngelaMos | 2026
// templates.go

package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

const layoutHTML = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, Helvetica, Arial, sans-serif; background-color: #f4f4f7; margin: 0; padding: 24px;">
  <div style="max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
    {{template "body" .}}
    <p style="color: #9a9ea6; font-size: 12px; margin-top: 32px;">
      You are receiving this email because of activity on your {{.AppName}} account.
      If this wasn't you, you can safely ignore this message.
    </p>
  </div>
</body>
</html>`

const verificationBody = `{{define "body"}}
<h2 style="color: #333;">Hi {{.Name}},</h2>
<p>Thanks for signing up for {{.AppName}}. Confirm your email address to activate your account:</p>
<p style="text-align: center; margin: 28px 0;">
  <a href="{{.Link}}" style="background: #2f6fed; color: #fff; padding: 12px 28px; border-radius: 6px; text-decoration: none;">Verify email</a>
</p>
<p style="color: #6b6e76; font-size: 13px;">Or paste this link into your browser: {{.Link}}</p>
{{end}}`

const welcomeBody = `{{define "body"}}
<h2 style="color: #333;">Welcome, {{.Name}}!</h2>
<p>Your {{.AppName}} account is ready. You signed in with Google, so there is no password to remember.</p>
{{end}}`

const loginAlertBody = `{{define "body"}}
<h2 style="color: #333;">Hi {{.Name}},</h2>
<p>There was a new sign-in to your {{.AppName}} account at {{.At}}.</p>
<p>If this was you, no action is needed. If not, reset your password immediately.</p>
{{end}}`

const passwordResetBody = `{{define "body"}}
<h2 style="color: #333;">Hi {{.Name}},</h2>
<p>We received a request to reset your {{.AppName}} password. This link expires in one hour:</p>
<p style="text-align: center; margin: 28px 0;">
  <a href="{{.Link}}" style="background: #2f6fed; color: #fff; padding: 12px 28px; border-radius: 6px; text-decoration: none;">Reset password</a>
</p>
<p style="color: #6b6e76; font-size: 13px;">If you didn't request this, ignore this email and your password will stay unchanged.</p>
{{end}}`

const passwordChangedBody = `{{define "body"}}
<h2 style="color: #333;">Hi {{.Name}},</h2>
<p>Your {{.AppName}} password was just changed.</p>
<p>If you didn't do this, contact support right away.</p>
{{end}}`

var (
	verificationTmpl    = mustParse("verification", verificationBody)
	welcomeTmpl         = mustParse("welcome", welcomeBody)
	loginAlertTmpl      = mustParse("login_alert", loginAlertBody)
	passwordResetTmpl   = mustParse("password_reset", passwordResetBody)
	passwordChangedTmpl = mustParse("password_changed", passwordChangedBody)
)

func mustParse(name, body string) *template.Template {
	return template.Must(
		template.Must(
			template.New(name).Parse(layoutHTML),
		).Parse(body),
	)
}

type verificationData struct {
	AppName string
	Name    string
	Link    string
}

type welcomeData struct {
	AppName string
	Name    string
}

type loginAlertData struct {
	AppName string
	Name    string
	At      string
}

type passwordResetData struct {
	AppName string
	Name    string
	Link    string
}

type passwordChangedData struct {
	AppName string
	Name    string
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

func renderVerification(data verificationData) (string, error) {
	return render(verificationTmpl, data)
}

func renderWelcome(data welcomeData) (string, error) {
	return render(welcomeTmpl, data)
}

func renderLoginAlert(data loginAlertData) (string, error) {
	return render(loginAlertTmpl, data)
}

func renderPasswordReset(data passwordResetData) (string, error) {
	return render(passwordResetTmpl, data)
}

func renderPasswordChanged(data passwordChangedData) (string, error) {
	return render(passwordChangedTmpl, data)
}
