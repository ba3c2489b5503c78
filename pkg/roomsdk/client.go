// Package roomsdk is a typed HTTP client for the room service, used by
// other services and by the end-to-end tests.
package roomsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a room service instance. Token is the bearer
// credential attached to every request.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a client with a sane default timeout.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enter creates or refreshes the caller's user record.
func (c *Client) Enter(ctx context.Context) (UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodPost, "/api/user/enter", nil, &out)
	return out, err
}

// Retrieve fetches the caller's user record.
func (c *Client) Retrieve(ctx context.Context) (UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodGet, "/api/user/retrieve", nil, &out)
	return out, err
}

// Detach removes the caller's account.
func (c *Client) Detach(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/user/detach", nil, nil)
}

// CreateRoom opens a new pending room inviting inviteeEmail.
func (c *Client) CreateRoom(ctx context.Context, name, inviteeEmail string) (RoomResponse, error) {
	var out RoomResponse
	err := c.do(ctx, http.MethodPost, "/api/room/create-room",
		CreateRoomRequest{Name: name, InviteeEmail: inviteeEmail}, &out)
	return out, err
}

// JoinRoom redeems a join code.
func (c *Client) JoinRoom(ctx context.Context, code string) (RoomResponse, error) {
	var out RoomResponse
	err := c.do(ctx, http.MethodPost, "/api/room/join-room",
		JoinRoomRequest{RoomKeyCode: code}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("roomsdk: encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("roomsdk: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("roomsdk: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Code = errBody.Error
			apiErr.Description = errBody.ErrorDescription
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("roomsdk: decoding response: %w", err)
	}
	return nil
}
