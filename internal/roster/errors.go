package roster

import "errors"

var (
	ErrUnknownUser = errors.New("user is not in the roster")
	ErrNoSchedule  = errors.New("no shift schedule for user")
	ErrInvalidFile = errors.New("invalid roster file")
)
