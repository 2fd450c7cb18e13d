package webhooks

import "sync/atomic"

// Stats counts webhook outcomes for the metrics endpoint.
type Stats struct {
	Received            atomic.Int64
	Rejected            atomic.Int64
	Processed           atomic.Int64
	Ignored             atomic.Int64
	Failed              atomic.Int64
	NotificationsSent   atomic.Int64
	NotificationsFailed atomic.Int64
}
