package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"hirelane/api/internal/mailer"
	"hirelane/api/internal/models"
)

// EmailComposer renders the transactional emails and dispatches them
// through the configured mailer. Sends are best-effort: the token row is
// already committed, so a delivery failure is logged and the flow carries
// on. The user can always re-request after the cooldown.
type EmailComposer struct {
	mail    mailer.Mailer
	baseURL string
	log     zerolog.Logger
}

func NewEmailComposer(mail mailer.Mailer, baseURL string, log zerolog.Logger) *EmailComposer {
	return &EmailComposer{mail: mail, baseURL: baseURL, log: log}
}

func (c *EmailComposer) SendVerification(to, token string) {
	link := fmt.Sprintf("%s/verify-email?token=%s", c.baseURL, token)
	c.send(to, "Verify your email address", fmt.Sprintf(
		`<p>Welcome to Hirelane!</p>
<p>Please confirm your email address by clicking the link below. The link is valid for 24 hours.</p>
<p><a href="%s">Verify email</a></p>`, link), models.TokenKindVerification)
}

func (c *EmailComposer) SendPasswordReset(to, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", c.baseURL, token)
	c.send(to, "Reset your password", fmt.Sprintf(
		`<p>We received a request to reset your password.</p>
<p>The link below is valid for 1 hour. If you did not request this, you can ignore this email.</p>
<p><a href="%s">Reset password</a></p>`, link), models.TokenKindPasswordReset)
}

func (c *EmailComposer) SendMagicLink(to, token string) {
	link := fmt.Sprintf("%s/magic-link?token=%s", c.baseURL, token)
	c.send(to, "Your sign-in link", fmt.Sprintf(
		`<p>Click the link below to sign in. It is valid for 15 minutes and can be used once.</p>
<p><a href="%s">Sign in</a></p>`, link), models.TokenKindMagicLink)
}

func (c *EmailComposer) SendInvitation(to, token, role string) {
	link := fmt.Sprintf("%s/invitation?token=%s", c.baseURL, token)
	c.send(to, "You have been invited to Hirelane", fmt.Sprintf(
		`<p>You have been invited to join Hirelane as %s.</p>
<p>The invitation is valid for 7 days.</p>
<p><a href="%s">Accept invitation</a></p>`, role, link), models.TokenKindInvitation)
}

func (c *EmailComposer) send(to, subject, html string, kind models.TokenKind) {
	if err := c.mail.Send(to, subject, html); err != nil {
		c.log.Warn().Err(err).Str("kind", string(kind)).Msg("send email failed")
	}
}
