// Package backend is the HTTP client for the remote donor platform REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	RouteLogin         = "/api/login"
	RouteDonorProfile  = "/donors/profile"
	RouteDonors        = "/donors"
	RouteBloodRequests = "/requests"

	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

// Client talks to the backend. After SetBearer every request carries
// "Authorization: Bearer <token>" until ClearBearer is called.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	bearer string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient uses hc as the underlying client. Its transport is wrapped,
// hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		c.httpClient = &clone
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = &bearerTransport{base: base, client: c}
	return c
}

// SetBearer makes token the default credential of every subsequent request
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
}

// ClearBearer removes the default credential
func (c *Client) ClearBearer() {
	c.SetBearer("")
}

// Bearer returns the current default credential
func (c *Client) Bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

// Login posts the credentials to the login endpoint
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, RouteLogin, LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("backend: login response carried no access_token")
	}
	return &resp, nil
}

// Profile returns the signed in donor's profile
func (c *Client) Profile(ctx context.Context) (*DonorProfile, error) {
	var profile DonorProfile
	if err := c.do(ctx, http.MethodGet, RouteDonorProfile, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile patches the signed in donor's profile and returns the result
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*DonorProfile, error) {
	var profile DonorProfile
	if err := c.do(ctx, http.MethodPatch, RouteDonorProfile, update, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// History returns the donation history of a donor
func (c *Client) History(ctx context.Context, donorID string) ([]Donation, error) {
	var history []Donation
	path := RouteDonors + "/" + url.PathEscape(donorID) + "/history"
	if err := c.do(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// Donors lists every donor (admin only on the backend)
func (c *Client) Donors(ctx context.Context) ([]DonorProfile, error) {
	var donors []DonorProfile
	if err := c.do(ctx, http.MethodGet, RouteDonors, nil, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

// BloodRequests lists open blood requests
func (c *Client) BloodRequests(ctx context.Context) ([]BloodRequest, error) {
	var requests []BloodRequest
	if err := c.do(ctx, http.MethodGet, RouteBloodRequests, nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "backend %s %s: encode body", method, path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "backend %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "backend %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.Wrapf(err, "backend %s %s: read body", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg(apiErr.Error())
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "backend %s %s: decode body", method, path)
	}
	return nil
}

// bearerTransport attaches the client's current bearer token, if any
type bearerTransport struct {
	base   http.RoundTripper
	client *Client
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.client.Bearer()
	if token == "" {
		return t.base.RoundTrip(req)
	}
	authorized := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(authorized)
	return t.base.RoundTrip(authorized)
}
