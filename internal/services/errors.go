package services

import "errors"

// ErrUnknownReport is the cause of a report request naming no known report
var ErrUnknownReport = errors.New("unknown report")
