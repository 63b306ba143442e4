package passage

import (
	"net/http"

	"KeikoHub/pkg/response"
)

var (
	ErrPassageNotFound       = response.NewError(http.StatusNotFound, "passage not found")
	ErrGradeNotFound         = response.NewError(http.StatusNotFound, "grade not found")
	ErrInvalidPosition       = response.NewError(http.StatusBadRequest, "unknown position filter")
	ErrUnknownVoice          = response.NewError(http.StatusBadRequest, "unknown voice")
	ErrExportUnavailable     = response.NewError(http.StatusServiceUnavailable, "export storage not configured")
	ErrHistoryUnavailable    = response.NewError(http.StatusServiceUnavailable, "passage history not configured")
	ErrCurriculumUnavailable = response.NewError(http.StatusServiceUnavailable, "curriculum unavailable")
)
