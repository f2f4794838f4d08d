package model

type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentStatusBorrowed    EquipmentStatus = "BORROWED"
	EquipmentStatusBroken      EquipmentStatus = "BROKEN"
	EquipmentStatusMaintenance EquipmentStatus = "MAINTENANCE"
)

type EquipmentType struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	TotalQuantity int    `json:"total_quantity"` // количество физических единиц
}

type Equipment struct {
	ID              int64           `json:"id"`
	EquipmentTypeID int64           `json:"equipment_type_id"`
	BookingID       *int64          `json:"booking_id"` // не nil только когда статус BORROWED
	Status          EquipmentStatus `json:"status"`
}

// EquipmentRequest запрос на выдачу оборудования при создании бронирования
type EquipmentRequest struct {
	EquipmentTypeID int64 `json:"equipment_type_id"`
	Count           int   `json:"count"`
}
