package models

import "time"

// ContactSubmission is one contact-form entry.
type ContactSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactReceipt is returned to the caller after a submission is accepted.
type ContactReceipt struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Forwarded bool   `json:"forwarded"`
	Timestamp string `json:"timestamp"`
}
