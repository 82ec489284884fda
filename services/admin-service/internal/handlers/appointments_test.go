package handlers

import (
	"testing"

	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/outbox"
)

func TestTransitionEvent(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
		want string
	}{
		{"cancel confirmed", model.StatusConfirmed, model.StatusCancelled, outbox.EventAppointmentCancelled},
		{"cancel pending", model.StatusPending, model.StatusCancelled, outbox.EventAppointmentCancelled},
		{"reactivate cancelled", model.StatusCancelled, model.StatusConfirmed, outbox.EventAppointmentBooked},
		{"stay confirmed", model.StatusConfirmed, model.StatusConfirmed, ""},
		{"confirm pending", model.StatusPending, model.StatusConfirmed, ""},
		{"stay cancelled", model.StatusCancelled, model.StatusCancelled, ""},
		{"complete confirmed", model.StatusConfirmed, model.StatusCompleted, ""},
	}
	for _, tc := range cases {
		if got := transitionEvent(tc.old, tc.new); got != tc.want {
			t.Errorf("%s: transitionEvent(%q, %q) = %q, want %q", tc.name, tc.old, tc.new, got, tc.want)
		}
	}
}
