// Copyright (c) 2026 Medibank. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// twilioAPIBase is the Twilio Messaging REST endpoint root.
const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// smsRequestTimeout bounds a single outbound Twilio call. It must stay well
// under constants.GlobalRequestTimeout since registration waits on delivery.
const smsRequestTimeout = 10 * time.Second

// SMSSender sends text messages through the Twilio Messaging REST API.
type SMSSender struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

// NewSMSSender builds a Twilio-backed SMS sender.
func NewSMSSender(accountSID, authToken, fromNumber string) *SMSSender {
	return &SMSSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: smsRequestTimeout},
	}
}

// Send delivers a single SMS to a normalized E.164 number.
//
// Twilio answers 201 Created on acceptance; anything else is a delivery
// failure. The response body is read but never logged verbatim since it can
// echo the destination number.
func (s *SMSSender) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, s.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.fromNumber)
	form.Set("Body", body)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: failed to build sms request: %w", err)
	}
	request.SetBasicAuth(s.accountSID, s.authToken)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("notify: sms request failed: %w", err)
	}
	defer response.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 4096))

	if response.StatusCode != http.StatusCreated {
		return fmt.Errorf("notify: sms provider rejected message (status %d)", response.StatusCode)
	}

	return nil
}
