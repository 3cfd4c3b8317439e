package booking

import "fmt"

// Status tracks a booking through its lifecycle.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusActive         Status = "active"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// validTransitions is the forward order customers move through. The
// administrative edit path bypasses it on purpose.
var validTransitions = map[Status][]Status{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusActive, StatusCancelled},
	StatusActive:         {StatusCompleted},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0 && s.IsValid()
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("booking: unknown status %q", raw)
	}
	return s, nil
}

// HoldStatuses lists the statuses that hold a vehicle against new bookings.
// Pending bookings do not block: the hold is taken at payment confirmation.
func HoldStatuses() []Status {
	return []Status{StatusConfirmed, StatusActive}
}
