// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserCtx returns the current user's Mongo ObjectID and a found flag.
// A malformed ID in the token fails closed.
func UserCtx(r *http.Request) (primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// IsActiveSiteAdmin reports whether the user is a site admin whose admin
// status flag is set. Always read fresh so revocations take effect
// immediately.
func IsActiveSiteAdmin(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (bool, error) {
	var doc struct {
		Admin struct {
			IsAdmin bool `bson:"is_admin"`
			Status  bool `bson:"status"`
		} `bson:"admin"`
	}
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return doc.Admin.IsAdmin && doc.Admin.Status, nil
}
