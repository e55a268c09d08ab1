package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	reqdto "volunteer-slots/internal/handler/dto/request"
	resdto "volunteer-slots/internal/handler/dto/response"
	"volunteer-slots/internal/handler/httperr"
	"volunteer-slots/internal/pkg/errs"
	"volunteer-slots/internal/usecase/commands"
	"volunteer-slots/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	bookings   commands.BookingCommands
	policies   commands.PolicyCommands
	volunteers commands.VolunteerCommands
	alerts     commands.AlertCommands
	delivery   commands.DeliveryCommands

	reservationViews queries.ReservationQueries
	policyViews      queries.PolicyQueries
	deliveryViews    queries.DeliveryQueries
	volunteerViews   queries.VolunteerQueries
}

func NewAdminHandler(
	bookings commands.BookingCommands,
	policies commands.PolicyCommands,
	volunteers commands.VolunteerCommands,
	alerts commands.AlertCommands,
	delivery commands.DeliveryCommands,
	reservationViews queries.ReservationQueries,
	policyViews queries.PolicyQueries,
	deliveryViews queries.DeliveryQueries,
	volunteerViews queries.VolunteerQueries,
) *AdminHandler {
	return &AdminHandler{
		bookings:         bookings,
		policies:         policies,
		volunteers:       volunteers,
		alerts:           alerts,
		delivery:         delivery,
		reservationViews: reservationViews,
		policyViews:      policyViews,
		deliveryViews:    deliveryViews,
		volunteerViews:   volunteerViews,
	}
}

// @Summary Decide on reservation
// @Description Confirm or cancel a pending reservation and email the volunteer
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.DecisionRequest true "Decision"
// @Success 200 {object} resdto.DecisionResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/reservations/{id}/decision [post]
func (h *AdminHandler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID", nil)
		return
	}

	var req reqdto.DecisionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Decision must be confirm or cancel", nil)
		return
	}

	result, err := h.bookings.Decide(c.Request.Context(), id, commands.Decision(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
		case errors.Is(err, errs.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Reservation is not pending", nil)
		case errors.Is(err, errs.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Decision must be confirm or cancel", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromDecisionResult(result))
}

// @Summary List reservations by date
// @Description List all reservations for one service day
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date query string true "Service day (YYYY-MM-DD)"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/reservations [get]
func (h *AdminHandler) ListReservationsByDate(c *gin.Context) {
	date, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	views, err := h.reservationViews.ListByDate(c.Request.Context(), date)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

// @Summary Get capacity policy
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.PolicyResponse
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/policy [get]
func (h *AdminHandler) GetPolicy(c *gin.Context) {
	view, err := h.policyViews.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, errs.ErrPolicyNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Capacity policy not configured", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromPolicyView(view))
}

// @Summary Update capacity policy
// @Description Replace the per-day capacity limit; existing bookings are untouched
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpdatePolicyRequest true "New policy"
// @Success 200 {object} resdto.PolicyResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /admin/policy [put]
func (h *AdminHandler) UpdatePolicy(c *gin.Context) {
	var req reqdto.UpdatePolicyRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.policies.UpdatePolicy(c.Request.Context(), commands.UpdatePolicyInput{
		MaxPerDay:       req.MaxPerDay,
		NotifyLeadHours: req.NotifyLeadHours,
	})
	if err != nil {
		if errors.Is(err, errs.ErrInvalidPolicy) {
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid policy values", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromPolicyView(view))
}

// @Summary Register volunteer
// @Description Register a new volunteer account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RegisterVolunteerRequest true "Volunteer"
// @Success 201 {object} resdto.VolunteerResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /admin/volunteers [post]
func (h *AdminHandler) RegisterVolunteer(c *gin.Context) {
	var req reqdto.RegisterVolunteerRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}
	req = req.Normalized()

	view, err := h.volunteers.Register(c.Request.Context(), commands.RegisterVolunteerInput{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrDuplicateVolunteer):
			httperr.AbortWithError(c, http.StatusConflict, err, "Email already registered", nil)
		case errors.Is(err, errs.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid volunteer fields", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromVolunteerView(view))
}

// @Summary Look up volunteer
// @Description Find a volunteer account by email address
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param email query string true "Email address"
// @Success 200 {object} resdto.VolunteerResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/volunteers [get]
func (h *AdminHandler) LookupVolunteer(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "email query parameter is required", nil)
		return
	}

	view, err := h.volunteerViews.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, errs.ErrVolunteerNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Volunteer not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromVolunteerView(view))
}

// @Summary Deactivate volunteer
// @Description Retire a volunteer account; history is preserved
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Volunteer ID"
// @Success 204
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/volunteers/{id} [delete]
func (h *AdminHandler) DeactivateVolunteer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid volunteer ID", nil)
		return
	}

	if err := h.volunteers.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, errs.ErrVolunteerNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Volunteer not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List delivery attempts
// @Description List recent notification delivery attempts for auditing
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} resdto.DeliveryAttemptResponse
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/deliveries [get]
func (h *AdminHandler) ListDeliveries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid limit", nil)
			return
		}
		limit = parsed
	}

	views, err := h.deliveryViews.ListRecent(c.Request.Context(), limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromDeliveryAttemptViews(views))
}

// @Summary Run unfilled capacity check
// @Description Check the next service day and alert if slots remain open
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.UnfilledCheckResponse
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/checks/unfilled [post]
func (h *AdminHandler) RunUnfilledCheck(c *gin.Context) {
	result, err := h.alerts.CheckUnfilledCapacity(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromUnfilledCheckResult(result))
}

// @Summary Send test notification
// @Description Push a probe message through the delivery pipeline
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TestNotificationRequest true "Recipient"
// @Success 200 {object} resdto.SendResultResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/test-notification [post]
func (h *AdminHandler) SendTestNotification(c *gin.Context) {
	var req reqdto.TestNotificationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	result, err := h.delivery.SendTest(c.Request.Context(), req.Recipient)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSendResult(result))
}
