package booking

import (
	"encoding/json"
)

// Event is the trigger payload handed to the booking handler.
type Event struct {
	Body string `json:"body"`
}

// Response is what the handler returns to the invoking layer.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// BadRequest is the response for a request that failed validation.
func BadRequest() Response {
	return Response{StatusCode: 400, Body: "{}"}
}

// Created is the response for a stored and published booking.
func Created(id string) (Response, error) {
	body, err := json.Marshal(struct {
		ID string `json:"id"`
	}{ID: id})
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: 201, Body: string(body)}, nil
}
