package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTotalsAudit is the task type for the nightly totals drift scan.
	TaskTotalsAudit = "totals:audit"
	// TaskIdempotencyCleanup is the task type for expiring stored request keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP once an outbound relay is provisioned.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// TotalsAuditPayload bounds the audit to recently touched documents.
type TotalsAuditPayload struct {
	// Days limits the scan to documents updated within this many days.
	// Zero scans everything.
	Days int `json:"days"`
}

// NewTotalsAuditTask constructs an Asynq task.
func NewTotalsAuditTask(days int) (*asynq.Task, error) {
	data, err := json.Marshal(TotalsAuditPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTotalsAudit, data), nil
}

// IdempotencyCleanupPayload controls key retention.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retentionHours"`
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
