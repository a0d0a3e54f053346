package model

import "errors"

// ErrTransport marks completion failures that happened before a usable
// answer arrived: network errors and non-2xx statuses.
var ErrTransport = errors.New("completion transport failed")
