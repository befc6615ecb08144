// Package jsonerr writes JSON bodies for the status responder.
package jsonerr

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Err is the body written for every error response.
type Err struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error writes structured error information to w using JSON encoding.
// The given status code is used if it is non-zero, otherwise it
// is set to 500.
//
// Only err's message is exposed, so callers must pass an error that is
// safe to show to an unauthenticated peer.
func Error(w http.ResponseWriter, err error, code int) {
	if code == 0 {
		code = http.StatusInternalServerError
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	Write(w, code, &Err{
		Code:    http.StatusText(code),
		Message: msg,
	})
}

// Write encodes v as the JSON body of a response with the given status.
func Write(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		data = []byte(`{"code":"Internal Server Error","message":"unable to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
