package presence

import "errors"

var (
	// ErrAlreadyOnline means the driver already holds a live lease
	ErrAlreadyOnline = errors.New("driver is already online")

	// ErrNotOnline means the driver holds no live lease
	ErrNotOnline = errors.New("driver is not online")

	// ErrLeaseExpired means a renewal arrived after the lease died; the
	// heartbeat loop must go through GoOnline again
	ErrLeaseExpired = errors.New("presence lease has expired")
)
