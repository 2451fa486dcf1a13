package mailer

import (
	"fmt"

	"github.com/slotwise/slotwise/internal/jobs"
)

const cancellationSubject = "Appointment canceled"

// ComposeCancellation builds the provider-facing email for a canceled
// appointment.
func ComposeCancellation(p *jobs.CancellationPayload) EmailMessage {
	appt := p.Appointment
	when := appt.Date.Format("Monday, January 2 at 3:04 PM")

	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with %s on %s has been canceled by the client.\nThe slot is open for new bookings.\n",
		appt.Provider.Name, appt.Client.Name, when)

	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your appointment with <strong>%s</strong> on <strong>%s</strong> has been canceled by the client.</p><p>The slot is open for new bookings.</p>",
		appt.Provider.Name, appt.Client.Name, when)

	return EmailMessage{
		To:      appt.Provider.Email,
		ToName:  appt.Provider.Name,
		Subject: cancellationSubject,
		Body:    body,
		HTML:    html,
	}
}
