package entity

import "time"

type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusBroken      Status = "broken"
	StatusRetired     Status = "retired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusBroken, StatusRetired:
		return true
	}
	return false
}

// DateLayout is the backend's calendar date format.
const DateLayout = "2006-01-02"

// Device is an IT asset registered to a hotel.
type Device struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Brand          string `json:"brand,omitempty"`
	Model          string `json:"model,omitempty"`
	Serial         string `json:"serial"`
	Location       string `json:"location,omitempty"`
	Status         Status `json:"status"`
	PurchaseDate   string `json:"purchaseDate,omitempty"`
	WarrantyExpiry string `json:"warrantyExpiry,omitempty"`
	HotelID        int64  `json:"hotelId"`
	HotelName      string `json:"hotelName,omitempty"`
}

// WarrantyExpiresWithin reports whether the warranty ends between now and
// now+window. Devices without a parseable expiry never match.
func (d Device) WarrantyExpiresWithin(now time.Time, window time.Duration) bool {
	exp, err := time.Parse(DateLayout, d.WarrantyExpiry)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !exp.Before(today) && !exp.After(today.Add(window))
}

// Input is the create/update payload.
type Input struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Brand          string `json:"brand,omitempty"`
	Model          string `json:"model,omitempty"`
	Serial         string `json:"serial"`
	Location       string `json:"location,omitempty"`
	Status         Status `json:"status,omitempty"`
	PurchaseDate   string `json:"purchaseDate,omitempty"`
	WarrantyExpiry string `json:"warrantyExpiry,omitempty"`
	HotelID        int64  `json:"hotelId,omitempty"`
}
