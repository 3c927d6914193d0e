package shot

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoRecords    = errors.New("no club records available")
)

// InvalidClubError reports one club record that cannot be used for selection.
// It unwraps to ErrInvalidInput.
type InvalidClubError struct {
	Index  int
	Club   string
	Field  string
	Reason string
}

func (e *InvalidClubError) Error() string {
	name := e.Club
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("club %s: %s %s", name, e.Field, e.Reason)
}

func (e *InvalidClubError) Unwrap() error { return ErrInvalidInput }
