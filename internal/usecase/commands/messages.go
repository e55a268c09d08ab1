package commands

import (
	"fmt"
	"time"

	"volunteer-slots/internal/domain/notification"
	"volunteer-slots/internal/usecase/queries"
)

// Message construction for each booking event. Text is deliberately plain;
// styling belongs to whatever consumes the mail, not to this core.

func newReservationMessage(adminEmail string, view *queries.ReservationView) notification.Request {
	date := view.Date.Format(time.DateOnly)
	return notification.Request{
		Recipient: adminEmail,
		Type:      notification.TypeNewReservation,
		RelatedID: view.ID.String(),
		Subject:   fmt.Sprintf("New reservation request for %s", date),
		BodyHTML: fmt.Sprintf(
			"<p>%s (%s) requested a slot on <strong>%s</strong>.</p><p>The reservation is pending your decision.</p>",
			view.VolunteerName, view.VolunteerEmail, date),
		Metadata: map[string]string{
			"volunteer_id": view.VolunteerID.String(),
			"date":         date,
		},
	}
}

func confirmationMessage(recipient string, view *queries.ReservationView) notification.Request {
	date := view.Date.Format(time.DateOnly)
	return notification.Request{
		Recipient: recipient,
		Type:      notification.TypeConfirmation,
		RelatedID: view.ID.String(),
		Subject:   fmt.Sprintf("Your slot on %s is confirmed", date),
		BodyHTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your reservation for <strong>%s</strong> has been confirmed. See you there!</p>",
			view.VolunteerName, date),
	}
}

func cancellationMessage(recipient string, view *queries.ReservationView) notification.Request {
	date := view.Date.Format(time.DateOnly)
	return notification.Request{
		Recipient: recipient,
		Type:      notification.TypeCancellation,
		RelatedID: view.ID.String(),
		Subject:   fmt.Sprintf("Your slot on %s was cancelled", date),
		BodyHTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your reservation for <strong>%s</strong> has been cancelled. You are welcome to book another day.</p>",
			view.VolunteerName, date),
	}
}

func unfilledAlertMessage(adminEmail string, fill queries.DayFillView) notification.Request {
	date := fill.Date.Format(time.DateOnly)
	return notification.Request{
		Recipient: adminEmail,
		Type:      notification.TypeUnfilledSlotsAlert,
		// Stable per-day key: repeated checks for the same day are
		// suppressed inside the dedup window.
		RelatedID: "alert-" + date,
		Subject:   fmt.Sprintf("%d open slot(s) on %s", fill.OpenSlots(), date),
		BodyHTML: fmt.Sprintf(
			"<p>The next service day <strong>%s</strong> has %d of %d slots filled.</p>",
			date, fill.ActiveCount, fill.MaxPerDay),
	}
}

func testMessage(recipient string, now time.Time) notification.Request {
	return notification.Request{
		Recipient: recipient,
		Type:      notification.TypeTest,
		Subject:   "Volunteer slots mailer test",
		BodyHTML:  fmt.Sprintf("<p>Test notification sent at %s.</p>", now.Format(time.RFC3339)),
	}
}
