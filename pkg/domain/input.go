package domain

import (
	"fmt"
	"strings"
)

// Input is a discrete symbol produced by the phone.
type Input string

const (
	InputHangUp Input = "hang_up"
	InputPickUp Input = "pick_up"
)

// Dial returns the input for a dialed digit in the range 0-9.
func Dial(digit int) Input {
	return Input(fmt.Sprintf("%d", digit))
}

// IsDigit reports whether the input is a dialed digit.
func (i Input) IsDigit() bool {
	return len(i) == 1 && i[0] >= '0' && i[0] <= '9'
}

// ParseInput converts user supplied text into an Input.
// Accepted forms are single digits, "hang_up"/"hangup" and "pick_up"/"pickup".
func ParseInput(s string) (Input, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "hang_up", "hangup", "hang-up":
		return InputHangUp, nil
	case "pick_up", "pickup", "pick-up":
		return InputPickUp, nil
	}
	in := Input(s)
	if in.IsDigit() {
		return in, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInput, s)
}
