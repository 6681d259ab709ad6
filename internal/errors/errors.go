package errors

import "errors"

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrDownloadTimeout = errors.New("download timeout exceeded")
)
