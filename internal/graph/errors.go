package graph

import (
	"errors"
	"fmt"
)

// ErrMissingToken indicates a Graph call was attempted without a credential.
var ErrMissingToken = errors.New("graph: bearer token is required")

// StatusError is any non-2xx Graph response. It keeps the upstream status
// and body text so the boundary can surface them verbatim.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graph: status %d: %s", e.Status, e.Body)
}

// AsStatusError unwraps err into a StatusError when one is in the chain.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
