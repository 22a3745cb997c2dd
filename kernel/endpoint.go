package kernel

// Endpoint identifies a message destination.
type Endpoint uint8

const (
	// EPFlashCtl is the flash controller task's operation inbox.
	EPFlashCtl Endpoint = iota
	// EPFlashEvt receives completion events for submitted operations.
	EPFlashEvt
	// EPFlashResp receives synchronous read responses.
	EPFlashResp
	// EPLogger receives log lines.
	EPLogger
	// EPApp identifies the application task. Sender identity only; it
	// receives nothing.
	EPApp

	numEndpoints
)
