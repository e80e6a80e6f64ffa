// internal/domain/models/ticket.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket proves a user's registration for an event. At most one ticket
// exists per (user, event) pair, enforced by a unique compound index.
// Token is the opaque string printed on the ticket.
type Ticket struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	Token   string             `bson:"token" json:"token"`
	HasPaid bool               `bson:"has_paid" json:"has_paid"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
