// internal/app/features/events/calendar.go
package events

import (
	"context"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/dalemusser/campushub/internal/app/system/respond"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
)

// HandleCalendar exports the event as an iCalendar file for "add to
// calendar" buttons.
func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		respond.Error(w, h.Log, storeErr(err))
		return
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//CampusHub//Events//EN")

	entry := cal.AddEvent(ev.ID.Hex() + "@campushub")
	entry.SetCreatedTime(ev.CreatedAt)
	entry.SetDtStampTime(time.Now().UTC())
	entry.SetStartAt(ev.Date)
	entry.SetEndAt(ev.Date.Add(2 * time.Hour)) // default slot; events carry no end time
	entry.SetSummary(ev.Name)
	if ev.Description != "" {
		entry.SetDescription(ev.Description)
	}
	if ev.IsOnline {
		entry.SetLocation("Online")
	} else if ev.Location.Venue != "" {
		entry.SetLocation(ev.Location.Venue)
	}
	if ev.Location.MapLink != "" {
		entry.SetURL(ev.Location.MapLink)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="event.ics"`)
	_ = cal.SerializeTo(w)
}
