package queue

import "errors"

// ErrClosed is returned by operations on a closed queue.
var ErrClosed = errors.New("queue closed")
