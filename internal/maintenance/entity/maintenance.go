package entity

import "time"

type Kind string

const (
	KindPreventive Kind = "preventive"
	KindCorrective Kind = "corrective"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Open is true while the work still counts towards the pending alert.
func (s Status) Open() bool { return s == StatusPending || s == StatusInProgress }

const DateLayout = "2006-01-02"

// Maintenance is one scheduled or corrective job on a device.
type Maintenance struct {
	ID            int64  `json:"id"`
	DeviceID      int64  `json:"deviceId"`
	DeviceName    string `json:"deviceName,omitempty"`
	Type          Kind   `json:"type"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduledDate"`
	CompletedDate string `json:"completedDate,omitempty"`
	Status        Status `json:"status"`
	Technician    string `json:"technician,omitempty"`
	Notes         string `json:"notes,omitempty"`
	HotelID       int64  `json:"hotelId"`
}

// Overdue reports whether open work was scheduled before today.
func (m Maintenance) Overdue(now time.Time) bool {
	if !m.Status.Open() {
		return false
	}
	at, err := time.Parse(DateLayout, m.ScheduledDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return at.Before(today)
}

type Input struct {
	DeviceID      int64  `json:"deviceId"`
	Type          Kind   `json:"type"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduledDate"`
	Status        Status `json:"status,omitempty"`
	Technician    string `json:"technician,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Completion closes a job.
type Completion struct {
	Status        Status `json:"status"`
	CompletedDate string `json:"completedDate"`
	Notes         string `json:"notes,omitempty"`
}
