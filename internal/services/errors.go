package services

import (
	apperrors "openindex/internal/errors"
	"openindex/internal/records"
)

// Resolution errors. Their messages are returned to clients as the
// problem detail.
var (
	ErrNamespaceNotFound = apperrors.NewNotFoundError("Namespace not found", records.ErrNotFound)
	ErrRecordNotFound    = apperrors.NewNotFoundError("Record not found", records.ErrNotFound)
)
