package reservation

type Status string

const (
	StatusHeld       Status = "held"
	StatusConfirmed  Status = "confirmed"
	StatusReleased   Status = "released"
	StatusCancelled  Status = "cancelled"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusHeld, StatusConfirmed, StatusReleased, StatusCancelled, StatusCheckedIn, StatusCheckedOut:
		return true
	default:
		return false
	}
}

// Occupies reports whether an allocation in this status holds its nights.
func (s Status) Occupies() bool {
	switch s {
	case StatusHeld, StatusConfirmed, StatusCheckedIn, StatusCheckedOut:
		return true
	default:
		return false
	}
}

// OccupyingStatuses lists the statuses for which Occupies is true.
func OccupyingStatuses() []Status {
	return []Status{StatusHeld, StatusConfirmed, StatusCheckedIn, StatusCheckedOut}
}
