package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/minrisk/risk-management/internal"
)

// Client talks to the identity provider's admin API with the service role
// key. Every call is bounded by the configured request timeout.
type Client struct {
	http    *resty.Client
	timeout time.Duration
	logger  *slog.Logger
}

type Config struct {
	AdminAPIURL    string
	ServiceRoleKey string
	RequestTimeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.AdminAPIURL).
		SetAuthToken(cfg.ServiceRoleKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var result struct {
		Users []User `json:"users"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		SetResult(&result).
		Get("/admin/users")
	if err != nil {
		return nil, c.wrapTransportError("lookup user", err)
	}

	if resp.IsError() {
		return nil, internal.NewUpstreamError(
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode()), nil)
	}

	for i := range result.Users {
		if result.Users[i].Email == email {
			return &result.Users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// CreateUser creates an email-confirmed account carrying role/organization
// metadata, so the invited user can sign in without a confirmation round trip.
func (c *Client) CreateUser(ctx context.Context, email string, metadata map[string]any) (*User, error) {
	var created User

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":         email,
			"email_confirm": true,
			"user_metadata": metadata,
		}).
		SetResult(&created).
		Post("/admin/users")
	if err != nil {
		return nil, c.wrapTransportError("create user", err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnprocessableEntity, resp.StatusCode() == http.StatusConflict:
		return nil, internal.NewConflictError("an account with this email already exists", internal.ErrCodeEmailAlreadyRegistered)
	case resp.IsError():
		return nil, internal.NewUpstreamError(
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode()), nil)
	}

	c.logger.Info("identity account created", "user_id", created.ID, "email", email)
	return &created, nil
}

// DeleteUser removes an identity account. Used only as the compensating
// action when profile reconciliation fails after account creation.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/admin/users/" + userID)
	if err != nil {
		return c.wrapTransportError("delete user", err)
	}

	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return internal.NewUpstreamError(
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode()), nil)
	}

	c.logger.Info("identity account deleted", "user_id", userID)
	return nil
}

// GenerateMagicLink asks the provider for a one-time sign-in link. Failures
// here are partial failures for the invitation flow, never fatal.
func (c *Client) GenerateMagicLink(ctx context.Context, email, redirectTo string) (string, error) {
	var result struct {
		ActionLink string `json:"action_link"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"type":        "magiclink",
			"email":       email,
			"redirect_to": redirectTo,
		}).
		SetResult(&result).
		Post("/admin/generate_link")
	if err != nil {
		return "", c.wrapTransportError("generate magic link", err)
	}

	if resp.IsError() {
		return "", internal.NewUpstreamError(
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode()), nil)
	}

	return result.ActionLink, nil
}

func (c *Client) wrapTransportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return internal.NewUpstreamTimeoutError("identity provider did not respond in time", err)
	}
	return internal.NewUpstreamError("identity provider request failed: "+op, err)
}
