package api

import (
	"errors"
	"net/http"

	reqdto "volunteer-slots/internal/handler/dto/request"
	resdto "volunteer-slots/internal/handler/dto/response"
	"volunteer-slots/internal/handler/middleware"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type VolunteerHandler struct {
	volunteers commands.VolunteerCommands
	views      queries.VolunteerQueries
}

func NewVolunteerHandler(volunteers commands.VolunteerCommands, views queries.VolunteerQueries) *VolunteerHandler {
	return &VolunteerHandler{
		volunteers: volunteers,
		views:      views,
	}
}

// @Summary Get my profile
// @Description Get the authenticated volunteer's profile
// @Tags volunteers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.VolunteerResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /volunteers/me [get]
func (h *VolunteerHandler) Me(c *gin.Context) {
	volunteerID, ok := middleware.GetVolunteerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	view, err := h.views.GetByID(c.Request.Context(), volunteerID)
	if err != nil {
		if errors.Is(err, errs.ErrVolunteerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Volunteer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromVolunteerView(view))
}

// @Summary Update my profile
// @Description Update the authenticated volunteer's name and phone
// @Tags volunteers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpdateVolunteerRequest true "Profile update"
// @Success 200 {object} resdto.VolunteerResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /volunteers/me [put]
func (h *VolunteerHandler) UpdateMe(c *gin.Context) {
	volunteerID, ok := middleware.GetVolunteerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.UpdateVolunteerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}
	req = req.Normalized()

	view, err := h.volunteers.UpdateProfile(c.Request.Context(), volunteerID, commands.UpdateVolunteerInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid profile fields",
			})
		case errors.Is(err, errs.ErrVolunteerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Volunteer not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromVolunteerView(view))
}
