package status

import (
	"go.encore.dev/statusauth/internal/client"
)

// Client is the SDK for checking a subscription status against a responder.
type Client struct {
	client *client.Client
}

func NewClient(client *client.Client) *Client {
	return &Client{client}
}
