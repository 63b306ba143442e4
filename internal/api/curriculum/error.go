package curriculum

import (
	"net/http"

	"KeikoHub/pkg/response"
)

var (
	ErrGradeNotFound         = response.NewError(http.StatusNotFound, "grade not found")
	ErrInvalidPosition       = response.NewError(http.StatusBadRequest, "invalid position")
	ErrPositionNotInGrade    = response.NewError(http.StatusNotFound, "position not taught at this grade")
	ErrMissingVideoQuery     = response.NewError(http.StatusBadRequest, "attack and technique are required")
	ErrCurriculumUnavailable = response.NewError(http.StatusServiceUnavailable, "curriculum unavailable")
	ErrVoicesUnavailable     = response.NewError(http.StatusServiceUnavailable, "voice catalog unavailable")
)
