package ecode

import "sync"

const (
	OK        = 0
	ParamErr  = -401
	ServerErr = -500

	PagingConfiguration = -1001
	PagingPointer       = -1002
	PagingStoreQuery    = -1003
)

var (
	messages = map[int]string{
		OK:                  "Success",
		ParamErr:            "Invalid parameters",
		ServerErr:           "Internal server error",
		PagingConfiguration: "Invalid paginator configuration",
		PagingPointer:       "Invalid page pointer",
		PagingStoreQuery:    "Store query failed",
	}
	mu sync.RWMutex
)

// Register adds or replaces the message for a code.
func Register(code int, message string) {
	mu.Lock()
	defer mu.Unlock()
	messages[code] = message
}

// Text returns the message registered for code, or "Unknown error".
func Text(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Unknown error"
}
