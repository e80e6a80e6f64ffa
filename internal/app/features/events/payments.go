// internal/app/features/events/payments.go
package events

import (
	"errors"

	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/dalemusser/campushub/internal/app/system/payments"
	"github.com/dalemusser/campushub/internal/domain/models"
)

func paymentsInput(ev models.Event, ticket models.Ticket, user models.User) payments.CheckoutInput {
	return payments.CheckoutInput{
		UserID:    user.ID.Hex(),
		EventID:   ev.ID.Hex(),
		TicketID:  ticket.ID.Hex(),
		EventName: ev.Name,
		Price:     ev.Registration.Price,
		UserEmail: user.Email,
	}
}

// paymentErr maps processor-level failures onto the error taxonomy.
func paymentErr(err error) error {
	if errors.Is(err, payments.ErrNotConfigured) {
		return apperr.InvalidState("paid events are not enabled on this deployment")
	}
	return err
}
