package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer 透過 SMTP（STARTTLS）寄送 HTML 郵件。
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer 建立 SMTP 寄送器。
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}
}

// Deliver 將 HTML 內容寄送到指定收件者。
func (m *SMTPMailer) Deliver(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil {
		return fmt.Errorf("smtp mailer is nil")
	}
	if m.host == "" || m.from == "" {
		return fmt.Errorf("smtp host or from address missing")
	}
	if to == "" {
		return fmt.Errorf("recipient address missing")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	msg := buildMessage(m.from, to, subject, htmlBody)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := m.send(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer 在未設定 SMTP 時使用，只記錄不真正寄送。
type LogMailer struct {
	logf func(format string, v ...interface{})
}

// NewLogMailer 建立僅記錄的寄送器。
func NewLogMailer(logf func(format string, v ...interface{})) *LogMailer {
	return &LogMailer{logf: logf}
}

func (m *LogMailer) Deliver(ctx context.Context, to, subject, htmlBody string) error {
	if m.logf != nil {
		m.logf("[Mail] (dry-run) to=%s subject=%q bytes=%d", to, subject, len(htmlBody))
	}
	return nil
}
