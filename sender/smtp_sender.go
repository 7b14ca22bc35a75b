package sender

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"
)

// SMTPConfig holds SMTP connection and sender identity settings.
type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	SenderName string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host not set")
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("SMTP port not set")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("SMTP username not set")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("SMTP password not set")
	}
	if cfg.SenderName == "" {
		cfg.SenderName = "CakeShop"
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, htmlBody string, attachments ...Attachment) (SendResult, error) {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	var msg []byte
	var err error
	if len(attachments) == 0 {
		msg = s.plainHTMLMessage(to, subject, htmlBody)
	} else {
		msg, err = s.multipartMessage(to, subject, htmlBody, attachments)
		if err != nil {
			return SendResult{}, fmt.Errorf("failed to build message: %w", err)
		}
	}

	if err := smtp.SendMail(addr, auth, s.cfg.Username, []string{to}, msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

func (s *SMTPSender) fromHeader() string {
	return fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.Username)
}

func (s *SMTPSender) plainHTMLMessage(to, subject, htmlBody string) []byte {
	return []byte(
		"From: " + s.fromHeader() + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			htmlBody,
	)
}

// multipartMessage builds a multipart/mixed MIME message with an HTML part
// followed by base64-encoded attachments.
func (s *SMTPSender) multipartMessage(to, subject, htmlBody string, attachments []Attachment) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	headers := "From: " + s.fromHeader() + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=" + writer.Boundary() + "\r\n" +
		"\r\n"

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	htmlPart, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", contentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

		part, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(att.Content)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return append([]byte(headers), body.Bytes()...), nil
}
