package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpaceStatusFor(t *testing.T) {
	assert.Equal(t, SpaceStatusBooked, SpaceStatusFor(BookingStatusConfirmed))
	assert.Equal(t, SpaceStatusInUse, SpaceStatusFor(BookingStatusCheckIn))
	assert.Equal(t, SpaceStatusEmpty, SpaceStatusFor(BookingStatusCheckOut))
	assert.Equal(t, SpaceStatusEmpty, SpaceStatusFor(BookingStatusCancelled))
}

func TestSpaceStatusFor_UnknownStatus(t *testing.T) {
	assert.Equal(t, SpaceStatusEmpty, SpaceStatusFor(BookingStatus("PENDING")))
}

func TestBookingStatus_Valid(t *testing.T) {
	for _, status := range []BookingStatus{
		BookingStatusConfirmed,
		BookingStatusCheckIn,
		BookingStatusCheckOut,
		BookingStatusCancelled,
	} {
		assert.True(t, status.Valid(), "status %s", status)
	}

	assert.False(t, BookingStatus("").Valid())
	assert.False(t, BookingStatus("confirmed").Valid())
	assert.False(t, BookingStatus("DELETED").Valid())
}

func TestBookingStatus_Terminal(t *testing.T) {
	assert.False(t, BookingStatusConfirmed.Terminal())
	assert.False(t, BookingStatusCheckIn.Terminal())
	assert.True(t, BookingStatusCheckOut.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
}

func TestBooking_Overlaps(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	booking := &Booking{
		StartTime: base,
		EndTime:   base.Add(2 * time.Hour),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical interval", base, base.Add(2 * time.Hour), true},
		{"contained inside", base.Add(30 * time.Minute), base.Add(time.Hour), true},
		{"overlaps start", base.Add(-time.Hour), base.Add(30 * time.Minute), true},
		{"overlaps end", base.Add(90 * time.Minute), base.Add(3 * time.Hour), true},
		{"covers booking", base.Add(-time.Hour), base.Add(3 * time.Hour), true},
		{"ends exactly at start", base.Add(-time.Hour), base, false},
		{"starts exactly at end", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
		{"entirely before", base.Add(-2 * time.Hour), base.Add(-time.Hour), false},
		{"entirely after", base.Add(3 * time.Hour), base.Add(4 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.Overlaps(tt.start, tt.end))
		})
	}
}
