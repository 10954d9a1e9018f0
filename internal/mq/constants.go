package mq

// Queue names and message definitions

// immediate queue carrying confirmation-email jobs, consumed by the
// notification workflow
const (
	BookingNotifyQueue = "booking.notify.immediate"
)

// retry path: failed jobs are parked in the delay queue with a per-message
// TTL and dead-letter back into the immediate queue
const (
	BookingNotifyRetryQueue      = "booking.notify.retry.delay"
	BookingNotifyRetryExchange   = "booking.notify.retry.exchange"
	BookingNotifyRetryRoutingKey = "booking.notify"
)

type NotificationMessage struct {
	BookingID uint `json:"booking_id"`
	Attempt   int  `json:"attempt"`
}
