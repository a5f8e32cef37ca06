package poller

//go:generate mockgen -destination=mock_poller.go -package=poller github.com/Sunoo/homebridge-plugin-update-check/pkg/poller Clock,Timer,Recorder

import (
	"context"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer abstracts a pending one-shot timer.
type Timer interface {
	Stop() bool
}

// Recorder receives every settled check.
type Recorder interface {
	Record(ctx context.Context, outcome *models.CheckOutcome) error
}
