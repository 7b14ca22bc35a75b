package sender

import (
	"context"
	"time"
)

// Attachment is a binary email attachment (e.g. a PDF receipt).
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string, attachments ...Attachment) (SendResult, error)
}
