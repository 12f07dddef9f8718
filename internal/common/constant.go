package common

import "time"

// RequestIDHeaderName is the HTTP header carrying the per-request id.
const RequestIDHeaderName = "X-Request-ID"

// WorkshopDuration is how long every workshop lasts.
const WorkshopDuration = 2 * time.Hour
