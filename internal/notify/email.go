package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"olxradar/internal/domain"
)

const smtpsPort = "465"

// EmailTransport delivers notifications as a single email over SMTP with
// implicit TLS.
type EmailTransport struct {
	server   string
	sender   string
	password string
	receiver string
}

func NewEmailTransport(server, sender, password, receiver string) *EmailTransport {
	return &EmailTransport{server: server, sender: sender, password: password, receiver: receiver}
}

func (t *EmailTransport) Name() string { return "email" }

// Send joins all chunks into one message body; email has no practical length
// ceiling, so the chunking only matters for chat-like transports.
func (t *EmailTransport) Send(ctx context.Context, payload domain.NotificationPayload) error {
	addr := net.JoinHostPort(t.server, smtpsPort)
	conn, err := (&tls.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, t.server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", t.sender, t.password, t.server)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(t.sender); err != nil {
		return fmt.Errorf("smtp MAIL: %w", err)
	}
	if err := client.Rcpt(t.receiver); err != nil {
		return fmt.Errorf("smtp RCPT: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write([]byte(t.message(payload))); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return client.Quit()
}

func (t *EmailTransport) message(payload domain.NotificationPayload) string {
	var msg strings.Builder
	msg.WriteString("From: " + t.sender + "\r\n")
	msg.WriteString("To: " + t.receiver + "\r\n")
	msg.WriteString("Subject: " + normalizeText(payload.Subject) + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.Join(payload.Chunks, "\n\n"))
	return msg.String()
}
