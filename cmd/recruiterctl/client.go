package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
	"github.com/Dkbhardwaj07/personality-assessment-system/internal/service"
)

// apiClient habla con la API de reclutadores.
type apiClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) Dashboard(ctx context.Context, filter string, page, pageSize int) (service.DashboardPage, error) {
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var out service.DashboardPage
	err := c.getJSON(ctx, "/dashboard?"+q.Encode(), &out)
	return out, err
}

func (c *apiClient) Snapshot(ctx context.Context) (domain.AggregateSnapshot, error) {
	var out domain.AggregateSnapshot
	err := c.getJSON(ctx, "/analytics/snapshot", &out)
	return out, err
}

func (c *apiClient) Profile(ctx context.Context, email string) (domain.PersonalityProfile, error) {
	var out domain.PersonalityProfile
	err := c.getJSON(ctx, "/personality-profile?email="+url.QueryEscape(email), &out)
	return out, err
}

// LiveURL traduce la URL base http(s) a la del feed websocket.
func (c *apiClient) LiveURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/recruiter"
	return u.String(), nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("api error: status=%d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("api error: status=%d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
