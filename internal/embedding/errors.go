package embedding

import "fmt"

// CountError reports an embedding response whose vector count does not match the input.
type CountError struct {
	Want, Got int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("embedding count mismatch: want %d, got %d", e.Want, e.Got)
}

func errCount(want, got int) error { return &CountError{Want: want, Got: got} }

// CheckCount returns a *CountError when got differs from want.
func CheckCount(want, got int) error {
	if want != got {
		return errCount(want, got)
	}
	return nil
}
