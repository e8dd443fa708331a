package reminder

import "time"

// EventType distinguishes the due-day event from ordinary reminders.
type EventType string

const (
	// EventDueDay marks the event whose offset is exactly zero.
	EventDueDay EventType = "due-day"
	// EventReminder marks every other event.
	EventReminder EventType = "reminder"
)

// Event is one reminder firing at a specific instant.
type Event struct {
	When       time.Time `json:"when"`
	Type       EventType `json:"type"`
	OffsetDays int       `json:"offset_days"`
}

// Plan is the ordered reminder schedule for one user's bill.
type Plan struct {
	UserID  string  `json:"user_id"`
	BillID  string  `json:"bill_id"`
	DueDate string  `json:"due_date"`
	Events  []Event `json:"plan"`
}
