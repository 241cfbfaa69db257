package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind separates "no response at all" from "the backend said no".
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Do for every failed call. Status is zero for
// network failures.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a dispatch failure with no response.
func IsNetwork(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == KindNetwork
}

// IsUnauthorized reports whether the backend rejected the credential or role.
func IsUnauthorized(err error) bool {
	var de *Error
	if !errors.As(err, &de) || de.Kind != KindHTTP {
		return false
	}
	return de.Status == http.StatusUnauthorized || de.Status == http.StatusForbidden
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}

// MessageOf returns the display message for err: the server message for
// dispatch errors, err.Error() otherwise.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindHTTP {
		return de.Message
	}
	return err.Error()
}

// serverMessage pulls the human readable message out of an error payload.
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && !strings.HasPrefix(s, "{") {
		return s
	}
	return http.StatusText(status)
}
