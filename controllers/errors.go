package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restokorp/restaurant-app/services"
	"github.com/restokorp/restaurant-app/utils"
)

var ErrNoPermission = errors.New("you don't have permission for this action")

// respondServiceError translates the service error taxonomy into HTTP
// codes. The UI relies on 409 vs 400 to choose the retry affordance
// ("slot taken, pick another time" vs "fix your input").
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	var transitionErr *services.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr), errors.Is(err, services.ErrInvalidInterval):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &notFoundErr):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &conflictErr):
		utils.RespondJSON(c, http.StatusConflict, err.Error(), gin.H{
			"table_id":  conflictErr.TableID,
			"conflicts": conflictErr.Conflicts,
		})
	case errors.As(err, &transitionErr):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("Internal error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
