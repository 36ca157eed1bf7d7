package member

import "errors"

var (
	ErrEmptySubmitter    = errors.New("submitted by is required")
	ErrStoreUpload       = errors.New("failed to store uploaded file")
	ErrImportCancelled   = errors.New("import cancelled")
	ErrReconcileSequence = errors.New("reconciliation step out of order")

	errBlankRow = errors.New("blank row")
)
