package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/you/authsvc/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// subjects maps each template kind to its mail subject.
var subjects = map[domain.EmailTemplate]string{
	domain.TemplateRegistrationOTP:     "Confirm Your Registration",
	domain.TemplateRegistrationSuccess: "Registration Confirmed",
	domain.TemplateResetOTP:            "Reset Your Password",
	domain.TemplateResetSuccess:        "Password Reset Successfully",
	domain.TemplateInvitationRequest:   "Invitation Request",
}

// SMTPMailer implements domain.Mailer over SMTP. Delivery failures propagate
// to the caller; there is no retry here.
type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	fromName  string
	timeout   time.Duration
	useTLS    bool
	templates *template.Template
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
	UseTLS   bool
}

// NewSMTPMailer creates a new SMTP mailer with all templates parsed up front.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPMailer{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		from:      cfg.From,
		fromName:  cfg.FromName,
		timeout:   cfg.Timeout,
		useTLS:    cfg.UseTLS,
		templates: templates,
	}, nil
}

// Send implements domain.Mailer
func (m *SMTPMailer) Send(ctx context.Context, to string, tpl domain.EmailTemplate, data map[string]string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient address is required")
	}

	subject, body, err := m.render(tpl, data)
	if err != nil {
		return err
	}

	msg := m.buildMessage(to, subject, body)
	if err := m.send(ctx, to, msg); err != nil {
		return fmt.Errorf("email could not be sent: %w", err)
	}
	return nil
}

// render produces the subject and HTML body for a template kind.
func (m *SMTPMailer) render(tpl domain.EmailTemplate, data map[string]string) (string, string, error) {
	subject, ok := subjects[tpl]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", tpl)
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, string(tpl)+".html", data); err != nil {
		return "", "", fmt.Errorf("failed to render template %q: %w", tpl, err)
	}
	return subject, body.String(), nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) []byte {
	fromHeader := m.from
	if strings.TrimSpace(m.fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.fromName, m.from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

// send dials with connection and transfer deadlines so a stalled SMTP peer
// cannot hold a request open indefinitely.
func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	dialer := &net.Dialer{Timeout: m.timeout}

	var conn net.Conn
	var err error
	if m.useTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if !m.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
				return err
			}
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(msg); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// Compile-time interface compliance verification
var _ domain.Mailer = (*SMTPMailer)(nil)
