package entity

// Staff is a hotel employee who can be assigned devices or jobs.
type Staff struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	HotelID    int64  `json:"hotelId"`
}

type Input struct {
	Name       string `json:"name"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	HotelID    int64  `json:"hotelId,omitempty"`
}
