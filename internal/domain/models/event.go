// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a club-hosted event. Participants holds Ticket references; the
// (user, event) uniqueness lives on the tickets collection.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	BannerImage string             `bson:"banner_image,omitempty" json:"banner_image,omitempty"`

	Date     time.Time     `bson:"date" json:"date"`
	Location EventLocation `bson:"location" json:"location"`
	IsOnline bool          `bson:"is_online" json:"is_online"`

	MaxParticipants int                `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	CreatedByClub   primitive.ObjectID `bson:"created_by_club" json:"created_by_club"`

	Registration EventRegistration    `bson:"registration" json:"registration"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"` // Ticket IDs

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EventLocation is the physical venue; both fields empty for online events.
type EventLocation struct {
	Venue   string `bson:"venue,omitempty" json:"venue,omitempty"`
	MapLink string `bson:"map_link,omitempty" json:"map_link,omitempty"`
}

// EventRegistration holds the registration terms. Price is in the platform
// currency's smallest display unit as entered (e.g. rupees), converted to
// the processor's minor unit only at checkout.
type EventRegistration struct {
	IsPaid   bool       `bson:"is_paid" json:"is_paid"`
	Price    float64    `bson:"price" json:"price"`
	Deadline *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
}
