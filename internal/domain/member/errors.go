package member

import "errors"

var (
	ErrInvalidFileKind        = errors.New("invalid file kind")
	ErrUnreadableFile         = errors.New("unreadable file")
	ErrMissingCriticalColumns = errors.New("missing critical columns")
	ErrMissingNationalID      = errors.New("missing national id")
	ErrMissingFullName        = errors.New("missing full name")
	ErrJobNotFound            = errors.New("import job not found")
)
