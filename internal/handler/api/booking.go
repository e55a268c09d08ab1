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
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookings commands.BookingCommands
	views    queries.ReservationQueries
}

func NewBookingHandler(bookings commands.BookingCommands, views queries.ReservationQueries) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		views:    views,
	}
}

// @Summary Create reservation
// @Description Book a slot for the authenticated volunteer on a service day
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations [post]
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	volunteerID, ok := middleware.GetVolunteerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	date, err := req.ToServiceDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date, expected YYYY-MM-DD",
		})
		return
	}

	view, err := h.bookings.CreateReservation(c.Request.Context(), volunteerID, date)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrCapacityExceeded):
			c.JSON(http.StatusConflict, gin.H{
				"error": "No slots left on that day",
			})
		case errors.Is(err, errs.ErrDuplicateBooking):
			c.JSON(http.StatusConflict, gin.H{
				"error": "You already have a booking on that day",
			})
		case errors.Is(err, errs.ErrInvalidDate):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Date is not bookable",
			})
		case errors.Is(err, errs.ErrVolunteerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Volunteer not found",
			})
		case errors.Is(err, errs.ErrVolunteerInactive):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Volunteer account is deactivated",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromReservationView(view))
}

// @Summary Get reservation
// @Description Get a single reservation by id
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *BookingHandler) GetReservation(c *gin.Context) {
	volunteerID, ok := middleware.GetVolunteerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID",
		})
		return
	}

	view, err := h.views.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	// Volunteers only see their own bookings; admins see everything.
	if view.VolunteerID != volunteerID && !middleware.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reservation not found",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary List my reservations
// @Description List the authenticated volunteer's reservations, newest day first
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ReservationResponse
// @Failure 401 {object} map[string]string
// @Router /reservations [get]
func (h *BookingHandler) ListMyReservations(c *gin.Context) {
	volunteerID, ok := middleware.GetVolunteerID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.views.ListByVolunteer(c.Request.Context(), volunteerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}
