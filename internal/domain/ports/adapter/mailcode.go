package adapter

import "context"

// Delivery statuses reported by the mail-code collaborator.
const (
	MailCodeSuccess  = "success"
	MailCodeNotFound = "not_found"
)

// MailCodeResult is one delivery-status lookup outcome.
type MailCodeResult struct {
	Status string
	Code   string
}

// MailCodeClient looks up a verification code delivered to a recipient
// address on a given platform. The channel is scarce and rate limited;
// callers serialize access through repository.FetchWindow.
type MailCodeClient interface {
	FetchLatest(ctx context.Context, address, platform string) (MailCodeResult, error)
}
