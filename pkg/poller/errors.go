package poller

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDuration = fmt.Errorf("invalid duration")
	errAlreadyStarted  = errors.New("scheduler already started")
	errNoSource        = errors.New("update source is required")
	errNoSink          = errors.New("sensor sink is required")
)
