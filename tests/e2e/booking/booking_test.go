//go:build e2e

package booking_test

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/domain/reservation"
	"volunteer-slots/internal/handler/dto/request"
	"volunteer-slots/internal/handler/dto/response"
	"volunteer-slots/tests/common/authtest"
	"volunteer-slots/tests/common/dbtest"
	"volunteer-slots/tests/common/httptest"
	"volunteer-slots/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	reservationsURL = "/api/reservations"
	policyURL       = "/api/admin/policy"
	decisionURL     = "/api/admin/reservations/%s/decision"
	deliveriesURL   = "/api/admin/deliveries"
	unfilledURL     = "/api/admin/checks/unfilled"
	testMailURL     = "/api/admin/test-notification"
	adminVolURL     = "/api/admin/volunteers"
)

type BookingSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func (s *BookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.Auth)
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

// nextServiceDay returns the first bookable weekday strictly after today.
func nextServiceDay() string {
	return reservation.MustServiceDate(time.Now().UTC()).NextServiceDay().String()
}

func secondServiceDay() string {
	return reservation.MustServiceDate(time.Now().UTC()).NextServiceDay().NextServiceDay().String()
}

func nextSaturday() string {
	d := time.Now().UTC()
	for d.Weekday() != time.Saturday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(time.DateOnly)
}

func (s *BookingSuite) newVolunteer(email, name string) (uuid.UUID, string) {
	t := s.T()
	id := dbtest.CreateTestVolunteer(t, s.DB, email, name)
	return id, s.jwt.GenerateToken(t, id, false)
}

func (s *BookingSuite) adminToken() string {
	return s.jwt.GenerateToken(s.T(), uuid.New(), true)
}

// setPolicy goes through the admin API so the read-through policy cache
// is invalidated along with the row.
func (s *BookingSuite) setPolicy(maxPerDay int) {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPut, policyURL,
		request.UpdatePolicyRequest{MaxPerDay: maxPerDay, NotifyLeadHours: 24}, s.adminToken())
	require.Equal(t, http.StatusOK, w.Code, "policy update should succeed: %s", w.Body.String())
}

func (s *BookingSuite) book(token, date string) *response.ReservationResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
		request.CreateReservationRequest{Date: date}, token)
	require.Equal(t, http.StatusCreated, w.Code, "booking should succeed: %s", w.Body.String())

	var created response.ReservationResponse
	httptest.DecodeBody(t, w, &created)
	return &created
}

func (s *BookingSuite) decide(reservationID uuid.UUID, decision string) *response.DecisionResponse {
	t := s.T()
	w := httptest.PerformRequest(t, s.Router, http.MethodPost,
		fmt.Sprintf(decisionURL, reservationID),
		request.DecisionRequest{Decision: decision}, s.adminToken())
	require.Equal(t, http.StatusOK, w.Code, "decision should succeed: %s", w.Body.String())

	var result response.DecisionResponse
	httptest.DecodeBody(t, w, &result)
	return &result
}

// =============================================================================
// TestCreateReservation - Booking API
// =============================================================================

func (s *BookingSuite) TestCreateReservation() {
	s.Run("Volunteer books an open weekday slot", func() {
		t := s.T()
		volunteerID, token := s.newVolunteer("alice@example.org", "Alice")
		date := nextServiceDay()

		created := s.book(token, date)
		require.Equal(t, volunteerID, created.VolunteerID)
		require.Equal(t, date, created.Date)
		require.Equal(t, "pending", created.Status)
		require.Nil(t, created.ConfirmedAt)

		// The admin notice rides the background dispatcher
		require.Eventually(t, func() bool {
			return dbtest.CountDeliveryAttempts(t, s.DB,
				s.Config.Mailer.AdminEmail, string(notification.TypeNewReservation)) == 1
		}, 5*time.Second, 50*time.Millisecond, "admin should be notified of the new reservation")
	})

	s.Run("Request without token is rejected", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: nextServiceDay()}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("Expired token is rejected", func() {
		t := s.T()
		volunteerID := dbtest.CreateTestVolunteer(t, s.DB, "expired@example.org", "Expired")
		token := s.jwt.CreateExpiredToken(t, volunteerID, false)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: nextServiceDay()}, token)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("Second active booking on the same day conflicts", func() {
		t := s.T()
		_, token := s.newVolunteer("bob@example.org", "Bob")
		date := nextServiceDay()

		s.book(token, date)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: date}, token)
		require.Equal(t, http.StatusConflict, w.Code)
	})

	s.Run("Weekend date is rejected", func() {
		t := s.T()
		_, token := s.newVolunteer("carol@example.org", "Carol")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: nextSaturday()}, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("Deactivated volunteer cannot book", func() {
		t := s.T()
		volunteerID, token := s.newVolunteer("dora@example.org", "Dora")
		dbtest.DeactivateVolunteer(t, s.DB, volunteerID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: nextServiceDay()}, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	s.Run("Token subject unknown to the service", func() {
		t := s.T()
		token := s.jwt.GenerateToken(t, uuid.New(), false)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: nextServiceDay()}, token)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// =============================================================================
// TestCapacityUnderContention - the last slot cannot be double-booked
// =============================================================================

func (s *BookingSuite) TestCapacityUnderContention() {
	s.Run("Concurrent requests for two slots admit exactly two", func() {
		t := s.T()
		s.setPolicy(2)
		date := nextServiceDay()

		tokens := make([]string, 3)
		for i := range tokens {
			_, tokens[i] = s.newVolunteer(fmt.Sprintf("racer%d@example.org", i), fmt.Sprintf("Racer %d", i))
		}

		codes := make([]int, len(tokens))
		var wg sync.WaitGroup
		for i, token := range tokens {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
					request.CreateReservationRequest{Date: date}, token)
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		created, conflicted := 0, 0
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicted++
			default:
				t.Fatalf("unexpected status %d", code)
			}
		}
		require.Equal(t, 2, created, "both open slots should be taken")
		require.Equal(t, 1, conflicted, "the loser should see a capacity conflict")
	})
}

// =============================================================================
// TestDecision - confirm / cancel with the volunteer email in-band
// =============================================================================

func (s *BookingSuite) TestDecision() {
	s.Run("Confirm stamps the reservation and emails the volunteer", func() {
		t := s.T()
		_, token := s.newVolunteer("eve@example.org", "Eve")
		created := s.book(token, nextServiceDay())

		result := s.decide(created.ID, "confirm")
		require.Equal(t, "confirmed", result.Reservation.Status)
		require.NotNil(t, result.Reservation.ConfirmedAt)
		require.True(t, result.EmailSent)
		require.True(t, strings.HasPrefix(result.MessageID, "dev-"), "dev gateway issues dev- message ids")

		// Synchronous send: the attempt row is already terminal
		require.Equal(t, 1, dbtest.CountDeliveryAttempts(t, s.DB,
			"eve@example.org", string(notification.TypeConfirmation)))
	})

	s.Run("Confirming twice conflicts", func() {
		t := s.T()
		_, token := s.newVolunteer("frank@example.org", "Frank")
		created := s.book(token, nextServiceDay())
		s.decide(created.ID, "confirm")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(decisionURL, created.ID),
			request.DecisionRequest{Decision: "confirm"}, s.adminToken())
		require.Equal(t, http.StatusConflict, w.Code)
	})

	s.Run("Cancel frees the slot for someone else", func() {
		t := s.T()
		s.setPolicy(1)
		date := nextServiceDay()

		_, first := s.newVolunteer("grace@example.org", "Grace")
		_, second := s.newVolunteer("heidi@example.org", "Heidi")

		created := s.book(first, date)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: date}, second)
		require.Equal(t, http.StatusConflict, w.Code, "the single slot is taken")

		result := s.decide(created.ID, "cancel")
		require.Equal(t, "cancelled", result.Reservation.Status)
		require.True(t, result.EmailSent)

		s.book(second, date)
	})

	s.Run("Cancelling a cancelled reservation is a quiet no-op", func() {
		t := s.T()
		_, token := s.newVolunteer("ivan@example.org", "Ivan")
		created := s.book(token, nextServiceDay())

		s.decide(created.ID, "cancel")
		result := s.decide(created.ID, "cancel")

		require.Equal(t, "cancelled", result.Reservation.Status)
		require.False(t, result.EmailSent, "the no-op must not email again")
		require.Equal(t, 1, dbtest.CountDeliveryAttempts(t, s.DB,
			"ivan@example.org", string(notification.TypeCancellation)))
	})

	s.Run("Unknown reservation", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(decisionURL, uuid.New()),
			request.DecisionRequest{Decision: "confirm"}, s.adminToken())
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("Non-admin cannot decide", func() {
		t := s.T()
		_, token := s.newVolunteer("judy@example.org", "Judy")
		created := s.book(token, nextServiceDay())

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(decisionURL, created.ID),
			request.DecisionRequest{Decision: "confirm"}, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

// =============================================================================
// TestReservationViews - ownership and listing
// =============================================================================

func (s *BookingSuite) TestReservationViews() {
	s.Run("Owner and admin see the reservation, strangers see 404", func() {
		t := s.T()
		_, owner := s.newVolunteer("owner@example.org", "Owner")
		_, stranger := s.newVolunteer("stranger@example.org", "Stranger")
		created := s.book(owner, nextServiceDay())
		detailURL := reservationsURL + "/" + created.ID.String()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, detailURL, nil, owner)
		require.Equal(t, http.StatusOK, w.Code)

		var fetched response.ReservationResponse
		httptest.DecodeBody(t, w, &fetched)
		if diff := cmp.Diff(created, &fetched, cmpopts.EquateApproxTime(time.Second)); diff != "" {
			t.Errorf("reservation detail mismatch (-want +got):\n%s", diff)
		}

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, detailURL, nil, stranger)
		require.Equal(t, http.StatusNotFound, w.Code, "other volunteers must not learn the id exists")

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, detailURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)
	})

	s.Run("Volunteer lists own reservations only", func() {
		t := s.T()
		_, mine := s.newVolunteer("mine@example.org", "Mine")
		_, other := s.newVolunteer("other@example.org", "Other")

		s.book(mine, nextServiceDay())
		s.book(mine, secondServiceDay())
		s.book(other, nextServiceDay())

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, reservationsURL, nil, mine)
		require.Equal(t, http.StatusOK, w.Code)

		var list []*response.ReservationResponse
		httptest.DecodeBody(t, w, &list)
		require.Len(t, list, 2)
	})

	s.Run("Admin lists a service day", func() {
		t := s.T()
		date := nextServiceDay()
		_, a := s.newVolunteer("day-a@example.org", "Day A")
		_, b := s.newVolunteer("day-b@example.org", "Day B")
		s.book(a, date)
		s.book(b, date)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			"/api/admin/reservations?date="+date, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var list []*response.ReservationResponse
		httptest.DecodeBody(t, w, &list)
		require.Len(t, list, 2)
	})
}

// =============================================================================
// TestPolicyAdmin - capacity policy management
// =============================================================================

func (s *BookingSuite) TestPolicyAdmin() {
	s.Run("Seeded policy is readable", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, policyURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var pol response.PolicyResponse
		httptest.DecodeBody(t, w, &pol)
		require.Equal(t, 6, pol.MaxPerDay)
	})

	s.Run("Update round-trips", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, policyURL,
			request.UpdatePolicyRequest{MaxPerDay: 3, NotifyLeadHours: 48}, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var pol response.PolicyResponse
		httptest.DecodeBody(t, w, &pol)
		require.Equal(t, 3, pol.MaxPerDay)
		require.Equal(t, 48, pol.NotifyLeadHours)
	})

	s.Run("Zero capacity is rejected by binding", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPut, policyURL,
			map[string]int{"max_per_day": 0, "notify_lead_hours": 24}, s.adminToken())
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// TestNotificationAdmin - delivery pipeline surfaces
// =============================================================================

func (s *BookingSuite) TestNotificationAdmin() {
	s.Run("Repeated unfilled checks are deduplicated", func() {
		t := s.T()
		tomorrowIsServiceDay := reservation.MustServiceDate(time.Now().UTC()).Next().IsServiceDay()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, unfilledURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var first response.UnfilledCheckResponse
		httptest.DecodeBody(t, w, &first)

		if !tomorrowIsServiceDay {
			require.True(t, first.Skipped, "weekend eve runs check nothing")
			return
		}
		require.True(t, first.Alerted, "an empty day should raise an alert")
		require.Equal(t, 6, first.MaxPerDay)
		require.Equal(t, 6, first.OpenSlots)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, unfilledURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var second response.UnfilledCheckResponse
		httptest.DecodeBody(t, w, &second)
		require.False(t, second.Alerted, "the same day must not be alerted twice inside the window")

		require.Equal(t, 1, dbtest.CountDeliveryAttempts(t, s.DB,
			s.Config.Mailer.AdminEmail, string(notification.TypeUnfilledSlotsAlert)))

		// Once the first alert ages out of the window the check fires again.
		dbtest.BackdateDeliveryAttempts(t, s.DB, s.Config.Mailer.AdminEmail,
			string(notification.TypeUnfilledSlotsAlert), s.Config.Dispatch.DedupWindow+time.Second)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, unfilledURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var third response.UnfilledCheckResponse
		httptest.DecodeBody(t, w, &third)
		require.True(t, third.Alerted, "an expired window should allow a fresh alert")

		require.Equal(t, 2, dbtest.CountDeliveryAttempts(t, s.DB,
			s.Config.Mailer.AdminEmail, string(notification.TypeUnfilledSlotsAlert)))
	})

	s.Run("Test notification flows end to end", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, testMailURL,
			request.TestNotificationRequest{Recipient: "probe@example.org"}, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var result response.SendResultResponse
		httptest.DecodeBody(t, w, &result)
		require.Equal(t, "delivered", result.Status)
		require.NotEmpty(t, result.MessageID)

		require.Equal(t, 1, dbtest.CountDeliveryAttempts(t, s.DB,
			"probe@example.org", string(notification.TypeTest)))
	})

	s.Run("Delivery audit trail is listable", func() {
		t := s.T()
		_, token := s.newVolunteer("audit@example.org", "Audit")
		created := s.book(token, nextServiceDay())
		s.decide(created.ID, "confirm")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, deliveriesURL, nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var attempts []*response.DeliveryAttemptResponse
		httptest.DecodeBody(t, w, &attempts)
		require.NotEmpty(t, attempts)

		var confirmation *response.DeliveryAttemptResponse
		for _, a := range attempts {
			if a.Type == string(notification.TypeConfirmation) {
				confirmation = a
			}
		}
		require.NotNil(t, confirmation, "the confirmation email should appear in the audit trail")
		require.Equal(t, "sent", confirmation.Status)
		require.NotNil(t, confirmation.SentAt)
	})
}

// =============================================================================
// TestVolunteerAdmin - registration and deactivation
// =============================================================================

func (s *BookingSuite) TestVolunteerAdmin() {
	s.Run("Registered volunteer can use the API at once", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminVolURL,
			request.RegisterVolunteerRequest{Email: "new@example.org", Name: "New Volunteer"}, s.adminToken())
		require.Equal(t, http.StatusCreated, w.Code, "registration should succeed: %s", w.Body.String())

		var vol response.VolunteerResponse
		httptest.DecodeBody(t, w, &vol)
		require.Equal(t, "active", vol.Status)

		token := s.jwt.GenerateToken(t, vol.ID, false)
		s.book(token, nextServiceDay())
	})

	s.Run("Lookup by email finds the account", func() {
		t := s.T()
		volunteerID, _ := s.newVolunteer("findme@example.org", "Find Me")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			adminVolURL+"?email=findme@example.org", nil, s.adminToken())
		require.Equal(t, http.StatusOK, w.Code)

		var vol response.VolunteerResponse
		httptest.DecodeBody(t, w, &vol)
		require.Equal(t, volunteerID, vol.ID)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			adminVolURL+"?email=nobody@example.org", nil, s.adminToken())
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("Duplicate email conflicts", func() {
		t := s.T()
		body := request.RegisterVolunteerRequest{Email: "twice@example.org", Name: "Twice"}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminVolURL, body, s.adminToken())
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, adminVolURL, body, s.adminToken())
		require.Equal(t, http.StatusConflict, w.Code)
	})

	s.Run("Deactivation blocks further bookings", func() {
		t := s.T()
		volunteerID, token := s.newVolunteer("leaving@example.org", "Leaving")

		w := httptest.PerformRequest(t, s.Router, http.MethodDelete,
			adminVolURL+"/"+volunteerID.String(), nil, s.adminToken())
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, reservationsURL,
			request.CreateReservationRequest{Date: nextServiceDay()}, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}
