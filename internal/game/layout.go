package game

// RoomOf returns the 1-based room owning a global door index, or 0 if the
// index is outside the fixed layout.
func RoomOf(globalIndex int) int {
	if globalIndex < 0 || globalIndex >= DoorCount {
		return 0
	}
	return globalIndex/DoorsPerRoom + 1
}

// DoorInRoomOf returns the 1-based door position within its room, or 0 if
// the index is outside the fixed layout.
func DoorInRoomOf(globalIndex int) int {
	if globalIndex < 0 || globalIndex >= DoorCount {
		return 0
	}
	return globalIndex%DoorsPerRoom + 1
}

// RoomDoorRange returns the half-open global index range [start, end) owned
// by a 1-based room. Both bounds are 0 for rooms outside 1..RoomCount.
func RoomDoorRange(room int) (start, end int) {
	if room < 1 || room > RoomCount {
		return 0, 0
	}
	start = (room - 1) * DoorsPerRoom
	return start, start + DoorsPerRoom
}
