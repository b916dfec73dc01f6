package relay

import "fmt"

// DeliveryError represents a failed primary delivery attempt. It is recovered
// locally by the fallback queue and never surfaced past the ack.
type DeliveryError struct {
	Message string
	Cause   error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delivery error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("delivery error: %s", e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}
