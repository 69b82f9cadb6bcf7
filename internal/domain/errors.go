package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common failures. Content errors (unknown cards, bad skill
// selectors) indicate authoring bugs and are surfaced synchronously at the
// point of misuse; a resolution stall is fatal for the match that hit it.
var (
	ErrNotFound        = errors.New("requested resource not found")
	ErrUnknownCard     = errors.New("unknown character card")
	ErrUnknownSkill    = errors.New("unknown skill")
	ErrInvalidPosition = errors.New("board position out of range")
	ErrStalled         = errors.New("resolution stalled: head message survived a quiet pass")
	ErrMatchFinished   = errors.New("match already finished")
)
