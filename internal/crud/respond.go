package crud

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMutation writes v after a mutation. A RefreshError still means the
// write went through, so v is written with the refresh failure in a header.
func WriteMutation(w http.ResponseWriter, status int, v any, err error) {
	var re *mutation.RefreshError
	if errors.As(err, &re) {
		w.Header().Set("X-Refresh-Error", dispatch.MessageOf(re.Err))
		err = nil
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, v)
}

// WriteError maps err to a status and writes {"error": message}. Backend
// errors keep their status and message; an unreachable backend is 502.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), map[string]string{"error": dispatch.MessageOf(err)})
}

func StatusFor(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingID):
		return http.StatusBadRequest
	case errors.Is(err, ErrReadOnly):
		return http.StatusMethodNotAllowed
	case errors.Is(err, mutation.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	case dispatch.IsNetwork(err):
		return http.StatusBadGateway
	}
	if s := dispatch.StatusOf(err); s > 0 {
		return s
	}
	return http.StatusInternalServerError
}
