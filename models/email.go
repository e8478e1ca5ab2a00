package models

import "time"

// EmailKind tags why a stored message was sent.
type EmailKind string

const (
	EmailKindAccepted     EmailKind = "participant_accepted"
	EmailKindRejected     EmailKind = "participant_rejected"
	EmailKindRegistration EmailKind = "registration_confirmation"
	EmailKindContact      EmailKind = "contact_form"
	EmailKindManual       EmailKind = "manual"
)

// EmailMessage is a persisted copy of an outbound notification.
type EmailMessage struct {
	ID      string    `json:"id" db:"id"`
	To      string    `json:"to" db:"recipient"`
	Subject string    `json:"subject" db:"subject"`
	Body    string    `json:"body" db:"body"`
	Kind    EmailKind `json:"kind" db:"kind"`
	Sent    bool      `json:"sent" db:"sent"`
	Error   *string   `json:"error,omitempty" db:"error"`
	SentAt  time.Time `json:"sent_at" db:"sent_at"`
}
