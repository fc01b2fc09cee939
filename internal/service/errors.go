package service

import (
	"errors"

	"github.com/sakif/citewall/internal/apperror"
)

// isDomainError reports whether err is (or wraps) a typed application error.
// Domain errors propagate untouched so the HTTP layer can map them; anything
// else gets logged and wrapped as an internal failure.
func isDomainError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
