// Copyright (c) 2026 Medibank. All rights reserved.

/*
Package notify delivers one-time passcodes and account notices to users.

It provides one concrete sender per channel: SMTP for email, Twilio for SMS.
Both senders are fire-per-call with no internal queueing. The registration
flow treats a delivery failure as fatal for the whole initiation, so senders
must report errors honestly instead of swallowing them.
*/
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
)

// Mailer sends HTML email over authenticated SMTP with STARTTLS.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewMailer builds an SMTP-backed mailer. The from address is used both as
// the envelope sender and the From header.
func NewMailer(host, port, username, password, from string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers a single HTML email to the given address.
//
// The connection is dialed in the clear and upgraded via STARTTLS, which is
// what SMTP submission on port 587 expects. Authentication happens
// only after the upgrade, so credentials never cross the wire in plaintext.
// The context deadline is honored for the TCP dial; SMTP conversation steps
// afterwards run on the connection's own timeouts.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := []byte(
		fmt.Sprintf("From: %s\r\n", m.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			htmlBody,
	)

	serverAddr := m.host + ":" + m.port

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("notify: smtp dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("notify: smtp handshake failed: %w", err)
	}
	defer client.Quit()

	if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return fmt.Errorf("notify: smtp starttls failed: %w", err)
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("notify: smtp auth failed: %w", err)
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("notify: smtp mail from rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("notify: smtp recipient rejected: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("notify: smtp data failed: %w", err)
	}
	if _, err := writer.Write(message); err != nil {
		return fmt.Errorf("notify: smtp write failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("notify: smtp close failed: %w", err)
	}

	return nil
}
