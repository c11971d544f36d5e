package runner

import (
	"errors"
	"fmt"
)

// ErrVerificationFailed is matched by every error Run returns.
var ErrVerificationFailed = errors.New("verification failed")

// StepError records the step at which a run stopped.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrVerificationFailed, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return target == ErrVerificationFailed
}
