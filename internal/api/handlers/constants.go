package handlers

const (
	// SSE event types of the card stream
	eventDelta  = "delta"
	eventResult = "result"
	eventError  = "error"
	eventDone   = "done"

	errInvalidJSONBody = "Invalid JSON body"
	errRequestCanceled = "Request canceled"
	errInternal        = "Internal server error"
)
