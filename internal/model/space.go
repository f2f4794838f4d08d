package model

type SpaceType string

const (
	SpaceTypeIndividual SpaceType = "INDIVIDUAL"
	SpaceTypeGroup      SpaceType = "GROUP"
	SpaceTypeMentoring  SpaceType = "MENTORING"
)

type SpaceStatus string

const (
	SpaceStatusEmpty  SpaceStatus = "EMPTY"
	SpaceStatusBooked SpaceStatus = "BOOKED"
	SpaceStatusInUse  SpaceStatus = "INUSE"
)

type StudySpace struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Capacity    int         `json:"capacity"`
	SpaceType   SpaceType   `json:"space_type"`
	SpaceStatus SpaceStatus `json:"space_status"` // денормализованная проекция активного бронирования
}

// SpaceUsage статистика использования помещения для менеджеров
type SpaceUsage struct {
	Space          StudySpace `json:"space"`
	TotalBookings  int64      `json:"total_bookings"`
	ActiveCheckins int64      `json:"active_checkins"`
}
