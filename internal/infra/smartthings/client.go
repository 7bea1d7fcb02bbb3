package smartthings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smart-remote/internal/domain"
)

const (
	DefaultBaseURL   = "https://enterprise.smartthings.com"
	DefaultMediaType = "application/vnd.smartthings+json;v=2"
)

// Client talks to the SmartThings REST API. It holds no session state: every
// call after token acquisition takes the credential explicitly.
type Client struct {
	baseURL      string
	serviceToken string
	mediaType    string
	httpClient   *http.Client
	now          func() time.Time
}

func NewClient(baseURL, serviceToken string) *Client {
	return NewClientWithHTTP(baseURL, serviceToken, &http.Client{Timeout: 15 * time.Second})
}

func NewClientWithHTTP(baseURL, serviceToken string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		serviceToken: strings.TrimPrefix(serviceToken, "Bearer "),
		mediaType:    DefaultMediaType,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// SetMediaType overrides the versioned Accept header.
func (c *Client) SetMediaType(mediaType string) {
	if mediaType != "" {
		c.mediaType = mediaType
	}
}

// AcquireToken exchanges the service credential for a bearer token. Every
// failure is reported as *AuthError.
func (c *Client) AcquireToken(ctx context.Context, lifetime time.Duration) (domain.Credential, error) {
	if lifetime <= 0 {
		lifetime = domain.DefaultTokenLifetime
	}

	body, err := json.Marshal(map[string]any{"expiresInSec": int(lifetime.Seconds())})
	if err != nil {
		return domain.Credential{}, &AuthError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/serviceaccount/token", c.serviceToken, body)
	if err != nil {
		return domain.Credential{}, &AuthError{Err: err}
	}

	var tokenResp struct {
		Token        string `json:"token"`
		ExpiresInSec int64  `json:"expiresInSec"`
	}
	if err := json.Unmarshal(resp, &tokenResp); err != nil {
		return domain.Credential{}, &AuthError{Err: fmt.Errorf("parsing token response: %w", err)}
	}

	if tokenResp.Token == "" {
		return domain.Credential{}, &AuthError{Err: ErrMissingToken}
	}

	expiresIn := lifetime
	if tokenResp.ExpiresInSec > 0 {
		expiresIn = time.Duration(tokenResp.ExpiresInSec) * time.Second
	}

	return domain.NewCredential(tokenResp.Token, expiresIn, c.now()), nil
}

func (c *Client) GetDevice(ctx context.Context, cred domain.Credential, deviceID string) (*domain.DeviceDescriptor, error) {
	resp, err := c.do(ctx, http.MethodGet, "/devices/"+url.PathEscape(deviceID), cred.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching device: %w", err)
	}

	var device domain.DeviceDescriptor
	if err := json.Unmarshal(resp, &device); err != nil {
		return nil, fmt.Errorf("parsing device: %w", err)
	}

	return &device, nil
}

func (c *Client) GetStatus(ctx context.Context, cred domain.Credential, deviceID string) (domain.DeviceStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, "/devices/"+url.PathEscape(deviceID)+"/status", cred.Token, nil)
	if err != nil {
		return domain.DeviceStatus{}, fmt.Errorf("fetching status: %w", err)
	}

	return ProjectStatus(resp), nil
}

// ExecuteCommands posts one envelope to its target device. The server runs
// the commands in order. There is no retry.
func (c *Client) ExecuteCommands(ctx context.Context, cred domain.Credential, env domain.CommandEnvelope) error {
	if len(env.Commands) == 0 {
		return fmt.Errorf("empty command envelope for device %s", env.Target.ID)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling commands: %w", err)
	}

	path := "/devices/" + url.PathEscape(env.Target.ID) + "/commands?ordered=true"
	if _, err := c.do(ctx, http.MethodPost, path, cred.Token, body); err != nil {
		return fmt.Errorf("executing command: %w", err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", c.mediaType)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}
