package ledger

import "github.com/google/uuid"

// Handle is proof of a successful authentication. It carries no credential
// material; the session ID exists only to correlate log lines.
type Handle struct {
	Number  string
	Session uuid.UUID
}

// NewHandle creates a handle for an authenticated account number.
func NewHandle(number string) Handle {
	return Handle{Number: number, Session: uuid.New()}
}
