package schedule

import "errors"

const (
	StatusNotStarted  = "not_started"
	StatusTaken       = "taken"
	StatusAbsent      = "absent"
	StatusRescheduled = "rescheduled"
	StatusMadeUp      = "made_up"
)

// Statuses lists every class status in display order.
var Statuses = []string{
	StatusNotStarted,
	StatusTaken,
	StatusAbsent,
	StatusRescheduled,
	StatusMadeUp,
}

var (
	ErrInvalidStatus           = errors.New("invalid class status")
	ErrRescheduledDateRequired = errors.New("rescheduled status requires a rescheduled date")
	ErrRescheduledSameDay      = errors.New("rescheduled date must differ from the class date")
	ErrNotRescheduled          = errors.New("class is not rescheduled")
)

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Disposition is a class's scheduling status together with the reschedule
// date that only the rescheduled status carries. Keeping the pair in one
// value makes the clearing rule structural: a disposition built for any
// non-rescheduled status simply has no date, so a transition away from
// rescheduled cannot leave a stale date behind.
type Disposition struct {
	Status          string
	RescheduledDate CalendarDate // zero unless Status == StatusRescheduled
}

// NewDisposition validates a requested status against its optional
// reschedule date. Every status is reachable from every other; the only
// constraints are on the date pairing.
func NewDisposition(status string, rescheduledDate *CalendarDate) (Disposition, error) {
	if !ValidStatus(status) {
		return Disposition{}, ErrInvalidStatus
	}
	if status != StatusRescheduled {
		// Date is dropped even if the caller sent one alongside a
		// non-rescheduled status.
		return Disposition{Status: status}, nil
	}
	if rescheduledDate == nil || rescheduledDate.IsZero() {
		return Disposition{}, ErrRescheduledDateRequired
	}
	return Disposition{Status: StatusRescheduled, RescheduledDate: *rescheduledDate}, nil
}

// ValidateFor checks constraints that depend on the class itself.
func (d Disposition) ValidateFor(classDate CalendarDate) error {
	if d.Status == StatusRescheduled && d.RescheduledDate == classDate {
		return ErrRescheduledSameDay
	}
	return nil
}

// UndoReschedule reverts a rescheduled class to its initial state. It is a
// dedicated operation rather than a generic "set not_started" so callers
// cannot forget that the date clears in the same update.
func UndoReschedule(current Disposition) (Disposition, error) {
	if current.Status != StatusRescheduled {
		return Disposition{}, ErrNotRescheduled
	}
	return Disposition{Status: StatusNotStarted}, nil
}
