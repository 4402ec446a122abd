package data

import "errors"

// ErrNoDatabase is returned by repositories constructed without a connection.
var ErrNoDatabase = errors.New("audit database not configured")
