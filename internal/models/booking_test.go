package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingResources(t *testing.T) {
	teacher := "t-1"
	room := "r-1"
	b := Booking{ClassID: "c-1", TeacherID: &teacher, RoomID: &room}

	assert.Equal(t, []ResourceKey{{Kind: ResourceClass, ID: "c-1"}, {Kind: ResourceTeacher, ID: "t-1"}}, b.Resources(false))
	assert.Len(t, b.Resources(true), 3)

	empty := ""
	assert.Len(t, Booking{ClassID: "c-1", TeacherID: &empty}.Resources(true), 1)
}

func TestBookingExceptionsScan(t *testing.T) {
	var ex BookingExceptions
	require.NoError(t, ex.Scan([]byte(`[{"date":"2024-09-02","reason":"holiday"}]`)))
	require.Len(t, ex, 1)
	assert.Equal(t, "holiday", ex[0].Reason)

	require.NoError(t, ex.Scan(nil))
	assert.Empty(t, ex)

	assert.Error(t, ex.Scan(42))

	value, err := BookingExceptions(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}

func TestResourceKeyLockKey(t *testing.T) {
	key := ResourceKey{Kind: ResourceTeacher, ID: "t-1"}
	assert.Equal(t, "tenant-a|teacher|t-1|MONDAY", key.LockKey("tenant-a", "MONDAY"))
	assert.Equal(t, "tenant-a|booking|b-1", BookingLockKey("tenant-a", "b-1"))
}
