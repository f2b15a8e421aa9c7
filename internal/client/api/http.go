package api

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

	"github.com/dmitrijs2005/runnervault/internal/client/models"
	"github.com/dmitrijs2005/runnervault/internal/common"
)

// HTTPClient talks JSON over HTTP to the character service. The zero token
// value means unauthenticated; WithToken produces a shallow copy carrying a
// bearer token, so authorization never leaks between call sites.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	token   string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) WithToken(token string) AuthClient {
	derived := *c
	derived.token = token
	return &derived
}

func (c *HTTPClient) Register(ctx context.Context, username, password, discordID string) error {
	body := map[string]string{"username": username, "password": password}
	if discordID != "" {
		body["discordId"] = discordID
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/register", body, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response: %w", common.ErrInvalidToken)
	}
	return resp.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListCharacters(ctx context.Context) ([]models.Character, error) {
	var list []models.Character
	if err := c.doJSON(ctx, http.MethodGet, "/characters", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) CreateCharacter(ctx context.Context, ch models.Character) (models.Character, error) {
	var created models.Character
	if err := c.doJSON(ctx, http.MethodPost, "/characters", ch, &created); err != nil {
		return models.Character{}, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateCharacter(ctx context.Context, id string, ch models.Character) (models.Character, error) {
	var updated models.Character
	path := "/characters/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodPut, path, ch, &updated); err != nil {
		return models.Character{}, err
	}
	return updated, nil
}

// doJSON performs one request/response cycle: marshals body (if any), sets
// the bearer header (if a token is bound), maps the status code, and decodes
// into out (if non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// StatusError reports a non-2xx response the client has no sentinel for.
// Message is the server's error field when it sent one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := readErrorMessage(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrInvalidToken, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	default:
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
