// Package response builds the uniform JSON replies written by the dispatcher
// and by request handlers. Builders are pure: fresh allocations, no shared
// state, safe from any goroutine.
package response

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json"

// Response is a terminal reply. The dispatcher writes it verbatim and never
// rewrites status, header or body.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON serializes payload exactly as encoding/json renders it and wraps it
// with the given status. A payload that cannot be serialized yields a 500
// with a fixed body instead of a half-written reply.
func JSON(payload map[string]any, status int) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Response{
			Status: http.StatusInternalServerError,
			Header: jsonHeader(),
			Body:   []byte(`{"message":"Internal error."}`),
		}
	}
	return &Response{
		Status: status,
		Header: jsonHeader(),
		Body:   body,
	}
}

// NotFound is the uniform reply for an unregistered path. Callers cannot
// tell route kinds apart from it.
func NotFound() *Response {
	return JSON(map[string]any{"message": "Not found."}, http.StatusNotFound)
}

// Forbidden is the uniform reply for a middleware or authorization rejection.
func Forbidden() *Response {
	return JSON(map[string]any{"message": "Forbidden."}, http.StatusForbidden)
}

// Timeout is the terminal reply for a request handler that exceeded its
// dispatch deadline.
func Timeout() *Response {
	return JSON(map[string]any{"message": "Request timed out."}, http.StatusGatewayTimeout)
}

// Write sends the response on w.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(r.Status)
	_, err := w.Write(r.Body)
	return err
}

func jsonHeader() http.Header {
	h := make(http.Header, 1)
	h.Set("Content-Type", contentTypeJSON)
	return h
}
