package selection

import "errors"

var (
	ErrInvalidPrimaryCandidate = errors.New("selection: primary candidate is not a member")
	ErrPrimaryNotTracked       = errors.New("selection: set does not track a primary")
)

type InvalidPrimaryCandidateError struct {
	ID ID
}

func (e *InvalidPrimaryCandidateError) Error() string {
	return "selection: primary candidate " + `"` + string(e.ID) + `"` + " is not a member"
}

func (e *InvalidPrimaryCandidateError) Is(target error) bool {
	return target == ErrInvalidPrimaryCandidate
}

func IsInvalidPrimaryCandidate(err error) bool {
	_, ok := errors.AsType[*InvalidPrimaryCandidateError](err)
	return ok
}
