package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates an FCM client. An empty credentialsFile falls back to
// application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// Push is one notification for all devices of a user
type Push struct {
	Title string
	Body  string
	Data  map[string]string
	// URL opened when the notification is clicked
	Link string
}

// Message builds the multicast message for tokens
func (p Push) Message(tokens []string) *messaging.MulticastMessage {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: p.Title,
				Body:  p.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}
	if p.Link != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: p.Link}
	}
	return msg
}

// SendToDevices sends push to every token and returns the tokens that failed
func (c *Client) SendToDevices(ctx context.Context, tokens []string, push Push) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, push.Message(tokens))
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	log.Printf("[FCM] Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	var failedTokens []string
	for i, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[i])
			log.Printf("[FCM] Failed to send to token %s: %v", ShortToken(tokens[i]), resp.Error)
		}
	}

	return failedTokens, nil
}

// ShortToken shortens a device token for logs
func ShortToken(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
