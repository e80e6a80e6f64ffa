// internal/app/system/notify/notify.go
package notify

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// Sink delivers in-app notifications. Delivery is best effort: a failed
// push is logged and swallowed so it never fails the operation that
// triggered it.
type Sink struct {
	users *userstore.Store
	log   *zap.Logger
}

func New(users *userstore.Store, log *zap.Logger) *Sink {
	return &Sink{users: users, log: log}
}

// Notification is the outbound shape before it is embedded on the user.
type Notification struct {
	Type         string
	Message      string
	RelatedClub  *primitive.ObjectID
	RelatedEvent *primitive.ObjectID
}

// Send pushes one notification to one user. Unknown types are dropped with
// a log line rather than stored.
func (s *Sink) Send(ctx context.Context, userID primitive.ObjectID, n Notification) {
	if !models.ValidNotificationType(n.Type) {
		s.log.Warn("dropping notification with unknown type",
			zap.String("type", n.Type),
			zap.String("user_id", userID.Hex()))
		return
	}
	err := s.users.PushNotification(ctx, userID, models.Notification{
		ID:           primitive.NewObjectID(),
		Type:         n.Type,
		Message:      n.Message,
		RelatedClub:  n.RelatedClub,
		RelatedEvent: n.RelatedEvent,
		IsRead:       false,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("notification delivery failed",
			zap.String("user_id", userID.Hex()),
			zap.String("type", n.Type),
			zap.Error(err))
	}
}

// Broadcast sends the same notification to many users, continuing past
// individual failures.
func (s *Sink) Broadcast(ctx context.Context, userIDs []primitive.ObjectID, n Notification) {
	for _, id := range userIDs {
		s.Send(ctx, id, n)
	}
}
