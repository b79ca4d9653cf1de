// Copyright (c) 2026 Medibank. All rights reserved.

package notify

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plaintextSMTPServer speaks just enough unencrypted SMTP to observe the
// commands a client sends before the connection is upgraded.
func plaintextSMTPServer(t *testing.T) (addr string, commands <-chan string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	received := make(chan string, 8)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
		reader := bufio.NewReader(conn)

		_, _ = conn.Write([]byte("220 mail.test ESMTP\r\n"))
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimSpace(line)
			received <- line

			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				_, _ = conn.Write([]byte("250-mail.test\r\n250 AUTH PLAIN\r\n"))
			case strings.HasPrefix(line, "QUIT"):
				_, _ = conn.Write([]byte("221 bye\r\n"))
				return
			default:
				_, _ = conn.Write([]byte("502 command not implemented\r\n"))
			}
		}
	}()

	return listener.Addr().String(), received
}

func TestMailerSend_NegotiatesInTheClearThenUpgrades(t *testing.T) {
	addr, commands := plaintextSMTPServer(t)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	mailer := NewMailer(host, port, "user", "pass", "noreply@medibank.test")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The greeting and EHLO complete over the unencrypted connection, the
	// submission-port handshake. This server then refuses the upgrade, so
	// delivery must stop at the STARTTLS step with credentials never sent.
	err = mailer.Send(ctx, "to@x.com", "Your code", "<p>042917</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starttls")

	first := <-commands
	assert.True(t, strings.HasPrefix(first, "EHLO") || strings.HasPrefix(first, "HELO"),
		"expected a plaintext hello, got %q", first)
}
