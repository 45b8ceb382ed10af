package status

import "errors"

var (
	ErrNotQueued      = errors.New("queue: user not found in queue")
	ErrMalformedEntry = errors.New("queue: malformed queue entry")

	ErrRoomConflict  = errors.New("room: user already seated in an active room")
	ErrRoomNotFound  = errors.New("room: room not found")
	ErrUserNotInRoom = errors.New("room: user not found in room")

	ErrDomainExists = errors.New("domain: domain already exists")

	ErrInvalidToken = errors.New("auth: token not valid")
)
