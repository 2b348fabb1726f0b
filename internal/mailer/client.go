package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultSendURL = "https://api.mailjet.com/v3.1/send"

var ErrSendRejected = errors.New("email provider rejected send")

// Sender is the outbound delivery sink.
type Sender interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

// Client submits messages to the Mailjet v3.1 send endpoint using Basic
// auth derived from the public/private API key pair.
type Client struct {
	url        string
	authHeader string
	httpClient *http.Client
}

func NewClient(url, publicKey, privateKey string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultSendURL
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(publicKey + ":" + privateKey))
	return &Client{
		url:        url,
		authHeader: "Basic " + credentials,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send delivers a single message. SandboxMode is always explicitly false.
// A non-2xx status or an unparseable response body is ErrSendRejected.
func (c *Client) Send(ctx context.Context, msg Message) (*SendResult, error) {
	payload, err := json.Marshal(sendRequest{SandboxMode: false, Messages: []Message{msg}})
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSendRejected, resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrSendRejected, err)
	}
	return &result, nil
}
