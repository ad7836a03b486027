// Package client is a small REST client for the coach service.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to one coach service on behalf of one user.
type Client struct {
	http   *resty.Client
	userID string
}

// New constructs a Client for baseURL acting as userID.
func New(baseURL, userID string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	c := &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(90 * time.Second),
		userID: userID,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetError(&APIError{}).
		SetPathParam("userId", c.userID)
}

// check turns a non-2xx response into an *APIError.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Code != 0 {
		return apiErr
	}
	return &APIError{Code: resp.StatusCode(), Status: http.StatusText(resp.StatusCode()), Message: resp.String()}
}

func (c *Client) CreateSession(ctx context.Context, text string) (*CreatedSession, error) {
	var out CreatedSession
	err := check(c.request(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&out).
		Post("/api/users/{userId}/sessions"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]*SessionSummary, error) {
	var out struct {
		Sessions []*SessionSummary `json:"sessions"`
	}
	if err := check(c.request(ctx).SetResult(&out).Get("/api/users/{userId}/sessions")); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var out Session
	err := check(c.request(ctx).
		SetPathParam("sessionId", sessionID).
		SetResult(&out).
		Get("/api/users/{userId}/sessions/{sessionId}"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeSession asks the service to analyze a stored session. It may take as long as the AI provider does.
func (c *Client) AnalyzeSession(ctx context.Context, sessionID string) (*Analysis, error) {
	return c.analysisCall(ctx, sessionID, "analyze")
}

// RegenerateTips archives the current tips and produces a fresh analysis.
func (c *Client) RegenerateTips(ctx context.Context, sessionID string) (*Analysis, error) {
	return c.analysisCall(ctx, sessionID, "regenerate")
}

func (c *Client) analysisCall(ctx context.Context, sessionID, action string) (*Analysis, error) {
	var out Analysis
	err := check(c.request(ctx).
		SetPathParam("sessionId", sessionID).
		SetResult(&out).
		Post("/api/users/{userId}/sessions/{sessionId}/" + action))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SwipeTip(ctx context.Context, sessionID, tipID string, dir SwipeDirection) (*SwipeOutcome, error) {
	var out SwipeOutcome
	err := check(c.request(ctx).
		SetPathParams(map[string]string{"sessionId": sessionID, "tipId": tipID}).
		SetBody(map[string]string{"direction": string(dir)}).
		SetResult(&out).
		Post("/api/users/{userId}/sessions/{sessionId}/tips/{tipId}/swipe"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPreferences(ctx context.Context) (TagCounts, error) {
	var out struct {
		TagCounts TagCounts `json:"tagCounts"`
	}
	if err := check(c.request(ctx).SetResult(&out).Get("/api/users/{userId}/preferences")); err != nil {
		return nil, err
	}
	return out.TagCounts, nil
}

func (c *Client) ValuableTips(ctx context.Context) ([]*ValuableTip, error) {
	var out struct {
		Tips []*ValuableTip `json:"tips"`
	}
	if err := check(c.request(ctx).SetResult(&out).Get("/api/users/{userId}/tips/valuable")); err != nil {
		return nil, err
	}
	return out.Tips, nil
}
