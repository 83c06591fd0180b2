package smtp

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/atelier-api/internal/config"
)

// Template names understood by the mailer.
const (
	TemplateVerifyEmail   = "verify-email"
	TemplateResetPassword = "reset-password"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "verify-email"}}Hi {{or .firstName "there"}},

Please confirm your email address by opening the link below:

{{.verifyUrl}}

The link expires in 24 hours.{{end}}
{{define "reset-password"}}Hi {{or .firstName "there"}},

We received a request to reset your password. Open the link below to choose a new one:

{{.resetUrl}}

The link expires in 30 minutes. If you did not ask for this, ignore this email.{{end}}
`))

// Message is a templated email.
type Message struct {
	To       string
	Subject  string
	Template string
	Context  map[string]any
}

// Mailer sends emails.
type Mailer interface {
	SendTemplate(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	send     sendFunc
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}
}

// Render executes the named template with ctx.
func Render(name string, ctx map[string]any) (string, error) {
	if templates.Lookup(name) == nil {
		return "", fmt.Errorf("unknown mail template %q", name)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (m *mailer) SendTemplate(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Render(msg.Template, msg.Context)
	if err != nil {
		return err
	}
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.from, msg.To, msg.Subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return m.send(addr, auth, m.from, []string{msg.To}, []byte(raw))
}
