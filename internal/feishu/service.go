// Package feishu implements identity resolution and bot-app relationship
// verification against the Feishu open platform.
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bothubai/bothub/internal/config"
)

// ErrUpstreamAuth wraps failures of the Feishu auth endpoints (invalid or
// expired authorization code, unreachable upstream).
var ErrUpstreamAuth = errors.New("feishu upstream auth failure")

// Tenant token refresh margin: Feishu tokens live ~2h, refresh 5 minutes early.
const tokenRefreshMargin = 5 * time.Minute

const defaultHTTPTimeout = 10 * time.Second

// Service calls the Feishu open API with a cached tenant access token. The
// token is owned by the Service instance and refreshed under a single-flight
// guard so concurrent callers trigger exactly one refresh.
type Service struct {
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu             sync.Mutex
	tenantToken    string
	tokenExpiresAt time.Time
	refreshGroup   singleflight.Group
}

// NewService creates a Feishu service from config.
func NewService(log *slog.Logger, cfg config.FeishuConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultFeishuBaseURL
	}
	return &Service{
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log.With(slog.String("service", "feishu")),
	}
}

// tenantAccessToken returns the cached tenant access token, refreshing it
// when missing or about to expire.
func (s *Service) tenantAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.tenantToken != "" && time.Now().UTC().Before(s.tokenExpiresAt) {
		token := s.tenantToken
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	result, err, _ := s.refreshGroup.Do("tenant_access_token", func() (any, error) {
		return s.fetchTenantAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

type tenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

func (s *Service) fetchTenantAccessToken(ctx context.Context) (string, error) {
	var resp tenantTokenResponse
	err := s.postJSON(ctx, "/auth/v3/tenant_access_token/internal", "", map[string]string{
		"app_id":     s.appID,
		"app_secret": s.appSecret,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: tenant token: %v", ErrUpstreamAuth, err)
	}
	if resp.Code != 0 {
		return "", fmt.Errorf("%w: tenant token: %s (code %d)", ErrUpstreamAuth, resp.Msg, resp.Code)
	}

	s.mu.Lock()
	s.tenantToken = resp.TenantAccessToken
	s.tokenExpiresAt = time.Now().UTC().Add(time.Duration(resp.Expire)*time.Second - tokenRefreshMargin)
	s.mu.Unlock()

	return resp.TenantAccessToken, nil
}

// ResolveIdentity exchanges an OAuth authorization code for the caller's
// stable Feishu identity and display profile.
func (s *Service) ResolveIdentity(ctx context.Context, authCode string) (Identity, error) {
	authCode = strings.TrimSpace(authCode)
	if authCode == "" {
		return Identity{}, fmt.Errorf("%w: authorization code is required", ErrUpstreamAuth)
	}

	var tokenResp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	err := s.postJSON(ctx, "/authen/v1/access_token", "", map[string]string{
		"grant_type": "authorization_code",
		"code":       authCode,
	}, &tokenResp)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: exchange code: %v", ErrUpstreamAuth, err)
	}
	if tokenResp.Code != 0 {
		return Identity{}, fmt.Errorf("%w: exchange code: %s (code %d)", ErrUpstreamAuth, tokenResp.Msg, tokenResp.Code)
	}

	var userResp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			UserID    string `json:"user_id"`
			OpenID    string `json:"open_id"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
		} `json:"data"`
	}
	err = s.getJSON(ctx, "/authen/v1/user_info", tokenResp.Data.AccessToken, &userResp)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: user info: %v", ErrUpstreamAuth, err)
	}
	if userResp.Code != 0 {
		return Identity{}, fmt.Errorf("%w: user info: %s (code %d)", ErrUpstreamAuth, userResp.Msg, userResp.Code)
	}
	if userResp.Data.UserID == "" {
		return Identity{}, fmt.Errorf("%w: user info: missing user_id", ErrUpstreamAuth)
	}

	return Identity{
		UserID:    userResp.Data.UserID,
		OpenID:    userResp.Data.OpenID,
		Name:      userResp.Data.Name,
		Email:     userResp.Data.Email,
		AvatarURL: userResp.Data.AvatarURL,
	}, nil
}

// VerifyRelationship determines whether the given user is the owner or an
// admin of the Feishu application. Upstream failures are reported as an
// inconclusive (Verified=false) relationship with diagnostic evidence, never
// as an error: callers decide how to treat "could not determine".
func (s *Service) VerifyRelationship(ctx context.Context, appID, userID string) Relationship {
	token, err := s.tenantAccessToken(ctx)
	if err != nil {
		return inconclusive(appID, err)
	}

	var appResp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			App struct {
				AppName string `json:"app_name"`
				Creator struct {
					UserID string `json:"user_id"`
				} `json:"creator"`
				Owner struct {
					UserID string `json:"user_id"`
				} `json:"owner"`
			} `json:"app"`
		} `json:"data"`
	}
	err = s.getJSON(ctx, "/application/v6/applications/"+appID, token, &appResp)
	if err != nil {
		return inconclusive(appID, err)
	}
	if appResp.Code != 0 {
		return inconclusive(appID, fmt.Errorf("%s (code %d)", appResp.Msg, appResp.Code))
	}

	creatorID := appResp.Data.App.Creator.UserID
	ownerID := appResp.Data.App.Owner.UserID
	isOwner := userID != "" && (userID == creatorID || userID == ownerID)

	// Admin list failures are not fatal: the owner check already succeeded.
	isAdmin := false
	var adminResp struct {
		Code int `json:"code"`
		Data struct {
			UserList []struct {
				UserID string `json:"user_id"`
			} `json:"user_list"`
		} `json:"data"`
	}
	if err := s.getJSON(ctx, "/application/v6/applications/"+appID+"/app_admin_user_list", token, &adminResp); err == nil && adminResp.Code == 0 {
		for _, admin := range adminResp.Data.UserList {
			if admin.UserID == userID {
				isAdmin = true
				break
			}
		}
	}

	kind := RelationshipNone
	switch {
	case isOwner:
		kind = RelationshipOwner
	case isAdmin:
		kind = RelationshipAdmin
	}

	return Relationship{
		IsOwnerOrAdmin: isOwner || isAdmin,
		Kind:           kind,
		Verified:       true,
		Evidence: map[string]any{
			"app_id":     appID,
			"app_name":   appResp.Data.App.AppName,
			"creator_id": creatorID,
			"owner_id":   ownerID,
			"is_admin":   isAdmin,
		},
	}
}

func inconclusive(appID string, err error) Relationship {
	return Relationship{
		Kind:     RelationshipNone,
		Verified: false,
		Evidence: map[string]any{
			"app_id": appID,
			"error":  err.Error(),
		},
	}
}

func (s *Service) postJSON(ctx context.Context, path, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.doJSON(req, out)
}

func (s *Service) getJSON(ctx context.Context, path, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.doJSON(req, out)
}

func (s *Service) doJSON(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
