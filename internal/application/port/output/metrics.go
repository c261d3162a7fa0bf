package output

import "time"

type MetricsPort interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	SessionOpened()
	SessionClosed()
	CacheLookup(hit bool)
}
