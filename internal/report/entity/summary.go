package entity

// Summary is the per-scope dashboard report.
type Summary struct {
	HotelID          int64            `json:"hotelId,omitempty"`
	DevicesTotal     int              `json:"devicesTotal"`
	DevicesByStatus  map[string]int   `json:"devicesByStatus"`
	DevicesByType    map[string]int   `json:"devicesByType,omitempty"`
	Maintenances     MaintenanceStats `json:"maintenances"`
	WarrantyExpiring int              `json:"warrantyExpiring"`
}

type MaintenanceStats struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// Open is pending plus in progress.
func (m MaintenanceStats) Open() int { return m.Pending + m.InProgress }
