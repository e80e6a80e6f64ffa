// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. The set is closed; anything else is rejected by the
// notification sink before it reaches the database.
const (
	NotificationClub         = "club"
	NotificationEvent        = "event"
	NotificationAdmin        = "admin"
	NotificationSystem       = "system"
	NotificationWarning      = "warning"
	NotificationVerification = "verification"
)

// ValidNotificationType reports whether t is one of the closed type set.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationClub, NotificationEvent, NotificationAdmin,
		NotificationSystem, NotificationWarning, NotificationVerification:
		return true
	}
	return false
}

// Notification is an advisory message embedded in the owning user document,
// newest first. It is never addressable outside its user.
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type         string              `bson:"type" json:"type"`
	Message      string              `bson:"message" json:"message"`
	RelatedClub  *primitive.ObjectID `bson:"related_club,omitempty" json:"related_club,omitempty"`
	RelatedEvent *primitive.ObjectID `bson:"related_event,omitempty" json:"related_event,omitempty"`
	IsRead       bool                `bson:"is_read" json:"is_read"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}
