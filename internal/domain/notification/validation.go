package notification

// Snooze bounds in minutes.
const (
	DefaultSnoozeMinutes = 60 * 24
	MaxSnoozeMinutes     = 60 * 24 * 14
)

// ValidateTransition validates a requested status change.
func ValidateTransition(from, to Status) error {
	switch from {
	case StatusOpen:
		if to == StatusSnoozed || to == StatusHandled {
			return nil
		}
	case StatusSnoozed:
		if to == StatusSnoozed || to == StatusHandled {
			return nil
		}
	}
	return ErrInvalidTransition
}

// ValidateSnoozeMinutes checks a snooze length. A nil length selects the
// default; an explicit length must be within 1..MaxSnoozeMinutes.
func ValidateSnoozeMinutes(minutes *int) (int, error) {
	if minutes == nil {
		return DefaultSnoozeMinutes, nil
	}
	if *minutes < 1 || *minutes > MaxSnoozeMinutes {
		return 0, ErrInvalidInput
	}
	return *minutes, nil
}
