// internal/app/system/enrollment/errors.go
package enrollment

import "errors"

// Validation failures reported to the caller. Nothing has been written when
// any of these come back.
var (
	ErrProgramUnavailable          = errors.New("program is not available for enrollment")
	ErrCohortClosed                = errors.New("cohort is not open for enrollment")
	ErrCohortFull                  = errors.New("cohort has reached its enrollment limit")
	ErrAlreadyEnrolled             = errors.New("person is already enrolled in this program")
	ErrConflictingActiveEnrollment = errors.New("person already has an active enrollment of this program type")
	ErrInvalidDiscount             = errors.New("discount code is not valid")
	ErrPaymentSetupMissing         = errors.New("no payment provider is configured")
)
