package storage

import "errors"

// defaultLimit caps Query results when the query sets no limit.
const defaultLimit = 100

var errClosed = errors.New("storage closed")
