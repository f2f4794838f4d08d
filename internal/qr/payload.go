package qr

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payload структурированное содержимое QR-кода
type Payload struct {
	QRID      uuid.UUID
	BookingID int64
	User      string
	Space     string
	StartTime time.Time
	EndTime   time.Time
}

// Метки полей текстовой записи
const (
	keyQRID      = "QR ID"
	keyBookingID = "Booking ID"
	keyUser      = "User"
	keySpace     = "Space"
	keyTime      = "Time"
)

// timeLayout формат времени в payload. RFC3339 не содержит пробелов и "--",
// поэтому разделители записи не могут встретиться внутри значений.
const timeLayout = time.RFC3339

// Encode сериализует payload в текстовую запись вида
//
//	QR ID: <uuid>
//	Booking ID: <id>
//	User: <username>
//	Space: <name>
//	Time: <start>--<end>
func Encode(p Payload) string {
	return fmt.Sprintf("%s: %s\n%s: %d\n%s: %s\n%s: %s\n%s: %s--%s",
		keyQRID, p.QRID,
		keyBookingID, p.BookingID,
		keyUser, p.User,
		keySpace, p.Space,
		keyTime, p.StartTime.Format(timeLayout), p.EndTime.Format(timeLayout),
	)
}

// Parse разбирает текстовую запись обратно в Payload.
// Разбор строгий: лишние или отсутствующие поля, неверные разделители
// и некорректные значения — это невалидные данные, а не фатальная ошибка.
func Parse(data string) (Payload, error) {
	var p Payload

	fields := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return p, fmt.Errorf("malformed line %q", line)
		}
		key = strings.TrimSpace(key)
		if _, exists := fields[key]; exists {
			return p, fmt.Errorf("duplicate field %q", key)
		}
		fields[key] = strings.TrimSpace(value)
	}

	for _, key := range []string{keyQRID, keyBookingID, keyUser, keySpace, keyTime} {
		if _, ok := fields[key]; !ok {
			return p, fmt.Errorf("missing field %q", key)
		}
	}

	qrID, err := uuid.Parse(fields[keyQRID])
	if err != nil {
		return p, fmt.Errorf("parse qr id: %w", err)
	}

	bookingID, err := strconv.ParseInt(fields[keyBookingID], 10, 64)
	if err != nil {
		return p, fmt.Errorf("parse booking id: %w", err)
	}

	// Интервал разделяется последним вхождением "--"
	timeField := fields[keyTime]
	sep := strings.LastIndex(timeField, "--")
	if sep < 0 {
		return p, fmt.Errorf("malformed time field %q", timeField)
	}

	start, err := time.Parse(timeLayout, strings.TrimSpace(timeField[:sep]))
	if err != nil {
		return p, fmt.Errorf("parse start time: %w", err)
	}

	end, err := time.Parse(timeLayout, strings.TrimSpace(timeField[sep+2:]))
	if err != nil {
		return p, fmt.Errorf("parse end time: %w", err)
	}

	p.QRID = qrID
	p.BookingID = bookingID
	p.User = fields[keyUser]
	p.Space = fields[keySpace]
	p.StartTime = start
	p.EndTime = end

	return p, nil
}
