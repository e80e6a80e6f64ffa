// internal/app/system/respond/respond.go

// Package respond centralizes JSON request decoding and response writing for
// the API handlers, including the mapping from apperr kinds to HTTP status
// codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// validate is shared; struct tags are read-only after init so concurrent use
// is safe.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads a JSON body into dst and runs struct-tag validation.
// Returns an InvalidArgument error suitable for Error().
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "malformed request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return apperr.Newf(apperr.KindInvalidArgument,
				"invalid or missing fields: %s", strings.Join(fields, ", "))
		}
		return apperr.Wrap(apperr.KindInvalidArgument, "invalid request", err)
	}
	return nil
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes a {"message": ...} body.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error writes err as a JSON error payload. Classified errors carry their
// own status and message; anything else becomes a 500 with a generic body,
// and the cause is logged (never leaked to the client).
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		JSON(w, ae.Kind.HTTPStatus(), map[string]string{
			"kind":    ae.Kind.String(),
			"message": ae.Message,
		})
		return
	}
	if log != nil {
		log.Error("internal error", zap.Error(err))
	}
	JSON(w, http.StatusInternalServerError, map[string]string{
		"kind":    "internal",
		"message": "internal server error",
	})
}
