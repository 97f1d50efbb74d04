package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// JSONResponse is a response that sends JSON.
type JSONResponse struct {
	Response
}

// NewJSONResponse marshals data and creates a JSON response.
func NewJSONResponse(data any) (Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("response: encode json: %w", err)
	}

	br := NewBaseResponse().
		WithHeader("content-type", "application/json").
		WithHeader("content-length", strconv.Itoa(len(body))).
		WithBody(bytes.NewReader(body))

	return &JSONResponse{
		Response: br,
	}, nil
}

// MustJSON is NewJSONResponse for values that always marshal, such as maps
// of strings. It panics on an encoding error.
func MustJSON(data any) Response {
	r, err := NewJSONResponse(data)
	if err != nil {
		panic(err)
	}
	return r
}
