package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendCodeSender delivers verification links and codes through the Resend
// email API.
type ResendCodeSender struct {
	Client     *resend.Client
	From       string
	AppBaseURL string
	VerifyPath string
}

func NewResendCodeSender(apiKey string, from string, appBaseURL string) *ResendCodeSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendCodeSender{}
	}
	return &ResendCodeSender{
		Client:     resend.NewClient(apiKey),
		From:       from,
		AppBaseURL: strings.TrimRight(appBaseURL, "/"),
		VerifyPath: "/verify",
	}
}

func (s *ResendCodeSender) SendRegistrationCode(ctx context.Context, subject string, secret string, code string) error {
	link := s.buildURL(secret)
	html := fmt.Sprintf(
		"<p>Finish creating your account:</p><p><a href=\"%s\">Verify registration</a></p><p>Your verification code is <strong>%s</strong>. The link expires in 12 hours.</p>",
		link, code,
	)
	text := fmt.Sprintf("Finish creating your account: %s\nYour verification code is %s. The link expires in 12 hours.", link, code)
	return s.send(subject, "Confirm your registration", html, text)
}

func (s *ResendCodeSender) SendReverificationCode(ctx context.Context, subject string, secret string) error {
	link := s.buildURL(secret)
	html := fmt.Sprintf("<p>Confirm it is still you:</p><p><a href=\"%s\">Re-verify this session</a></p>", link)
	text := fmt.Sprintf("Confirm it is still you: %s", link)
	return s.send(subject, "Re-verify your session", html, text)
}

func (s *ResendCodeSender) buildURL(secret string) string {
	if s.AppBaseURL == "" {
		return secret
	}
	return fmt.Sprintf("%s%s?token=%s", s.AppBaseURL, s.VerifyPath, secret)
}

func (s *ResendCodeSender) send(to string, subject string, html string, text string) error {
	if s.Client == nil {
		return errors.New("email sender not configured")
	}
	_, err := s.Client.Emails.Send(&resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	return err
}
