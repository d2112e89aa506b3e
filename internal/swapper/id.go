package swapper

import "github.com/google/uuid"

// instanceID tags one Swapper construction for diagnostic log correlation:
// two Swapper values opened against the same path (e.g. after a Close and
// reopen) get different ids, so PrintReflectionExceptions output can tell
// which construction a reopen or lock failure log line belongs to.
func newInstanceID() string {
	return uuid.NewString()
}
