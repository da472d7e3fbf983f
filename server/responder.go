package server

import (
	"context"

	"multiai/backend"
)

// Responder produces the reply to a chat request.
type Responder interface {
	Respond(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)

func (f ResponderFunc) Respond(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
	return f(ctx, req)
}

const PlaceholderReply = "This is a sample response. Connect a provider integration to get real answers."

// PlaceholderResponder answers every request with PlaceholderReply.
type PlaceholderResponder struct{}

func (PlaceholderResponder) Respond(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
	return &backend.ChatResponse{
		Content: PlaceholderReply,
		Type:    "text",
	}, nil
}
