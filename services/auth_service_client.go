// services/auth_service_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"trophy-progression-system/models"
	"trophy-progression-system/utils"
)

// AuthServiceClient delegates token verification to the platform auth service.
type AuthServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type ValidateResponse struct {
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	AvatarURL string   `json:"avatar_url"`
	Roles     []string `json:"roles"`
}

func NewAuthServiceClient(baseURL, token string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  utils.NewHTTPClient(10 * time.Second),
	}
}

// Verify calls POST /auth/validate on the auth service.
func (c *AuthServiceClient) Verify(ctx context.Context, accessToken string) (*models.Identity, error) {
	if accessToken == "" {
		return nil, Unauthorized("missing token")
	}
	url := fmt.Sprintf("%s/auth/validate", c.BaseURL)

	jsonData, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return nil, Internal("failed to encode validate request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, Internal("failed to build validate request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, Internal("auth service unreachable", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, Unauthorized("invalid token")
	case resp.StatusCode != http.StatusOK:
		log.Printf("[AUTH] /auth/validate returned %d: %s", resp.StatusCode, string(body))
		return nil, Internal("auth validation failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out ValidateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, Internal("invalid auth service response", err)
	}
	return claimsToIdentity(out.UserID, "", out.Username, out.AvatarURL, out.Roles)
}
