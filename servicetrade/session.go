package servicetrade

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Credentials are a company's stored ServiceTrade login
type Credentials struct {
	Username string
	Password string
}

// SessionManager caches one live ServiceTrade session per company. Logins
// are expensive and rate-limited upstream, so a session is shared by all
// concurrent callers for its company and refreshed reactively when the
// remote reports it stale, never proactively on a timer.
type SessionManager struct {
	client *Client
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]string
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(client *Client, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		client:   client,
		logger:   logger,
		sessions: make(map[uuid.UUID]string),
	}
}

// Login authenticates against ServiceTrade and caches the session token on
// success. Bad credentials (403) and malformed logins (400) return an empty
// token without an error; only transport faults are errors.
func (m *SessionManager) Login(ctx context.Context, companyID uuid.UUID, username, password string) (string, error) {
	token, resp, err := m.client.Login(ctx, username, password)
	if err != nil {
		return "", err
	}

	if resp.OK() && token != "" {
		m.mu.Lock()
		m.sessions[companyID] = token
		m.mu.Unlock()

		m.logger.Info("servicetrade login succeeded",
			zap.String("company_id", companyID.String()))
		return token, nil
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusForbidden:
		m.logger.Warn("servicetrade login rejected",
			zap.String("company_id", companyID.String()),
			zap.Int("status", resp.StatusCode))
	default:
		m.logger.Warn("servicetrade login failed",
			zap.String("company_id", companyID.String()),
			zap.Int("status", resp.StatusCode))
	}
	return "", nil
}

// GetSession returns the company's cached session token after validating it
// with the remote. A 401 or 404 from the remote evicts the entry and
// returns empty; any other answer leaves the session in place.
func (m *SessionManager) GetSession(ctx context.Context, companyID uuid.UUID) (string, error) {
	token := m.cached(companyID)
	if token == "" {
		return "", nil
	}

	resp, err := m.client.CheckSession(ctx, token)
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		m.evict(companyID)
		return "", nil
	}

	return token, nil
}

// EnsureSession returns a live session, logging in with the supplied
// credentials when the cache holds none. Without credentials it returns
// empty rather than failing.
func (m *SessionManager) EnsureSession(ctx context.Context, companyID uuid.UUID, creds *Credentials) (string, error) {
	token, err := m.GetSession(ctx, companyID)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	if creds == nil {
		return "", nil
	}
	return m.Login(ctx, companyID, creds.Username, creds.Password)
}

// Request performs an authenticated call against ServiceTrade on the
// company's session. Without a session it returns a synthetic 401 result
// and makes no network call. When the remote reports the session stale
// (401/404) and credentials are supplied, the session is refreshed and the
// call retried exactly once; a failed refresh hands the caller the original
// stale response unmodified.
func (m *SessionManager) Request(ctx context.Context, companyID uuid.UUID, method, path string, body []byte, creds *Credentials) (*Response, error) {
	token, err := m.EnsureSession(ctx, companyID, creds)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return &Response{
			StatusCode: http.StatusUnauthorized,
			Body:       []byte(`{"error":"not authenticated with servicetrade"}`),
		}, nil
	}

	resp, err := m.client.Do(ctx, token, method, path, body)
	if err != nil {
		return nil, err
	}

	stale := resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound
	if !stale || creds == nil {
		return resp, nil
	}

	m.evict(companyID)

	freshToken, err := m.Login(ctx, companyID, creds.Username, creds.Password)
	if err != nil || freshToken == "" {
		if err != nil {
			m.logger.Warn("servicetrade re-login failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
		// hand back the stale response rather than masking it
		return resp, nil
	}

	m.logger.Info("retrying servicetrade call on fresh session",
		zap.String("company_id", companyID.String()),
		zap.String("method", method),
		zap.String("path", path))

	return m.client.Do(ctx, freshToken, method, path, body)
}

// Logout closes the remote session best-effort and always evicts the local
// cache entry.
func (m *SessionManager) Logout(ctx context.Context, companyID uuid.UUID) {
	token := m.cached(companyID)
	if token != "" {
		if _, err := m.client.CloseSession(ctx, token); err != nil {
			m.logger.Warn("servicetrade logout failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
		}
	}
	m.evict(companyID)
}

// HasSession reports whether a session token is cached for the company,
// without touching the remote.
func (m *SessionManager) HasSession(companyID uuid.UUID) bool {
	return m.cached(companyID) != ""
}

func (m *SessionManager) cached(companyID uuid.UUID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[companyID]
}

func (m *SessionManager) evict(companyID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, companyID)
	m.mu.Unlock()
}
