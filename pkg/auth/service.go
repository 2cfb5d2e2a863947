package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gadaihub/backoffice/pkg/acl"
)

var (
	// ErrInvalidCredentials is returned when email or password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a session token is unknown or expired
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserInactive is returned when the account exists but is disabled
	ErrUserInactive = errors.New("user account is inactive")
)

// SessionTTL is how long an issued session token stays valid
const SessionTTL = 24 * time.Hour

// Service provides login, logout and identity resolution
type Service struct {
	db     *sql.DB
	tokens *TokenGenerator
}

// NewService creates a new auth service
func NewService(db *sql.DB) *Service {
	return &Service{
		db:     db,
		tokens: NewTokenGenerator(),
	}
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *Identity `json:"user"`
}

// Login verifies email/password and issues a session token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var (
		userID       int64
		passwordHash string
		isActive     bool
	)

	query := `SELECT id, password_hash, is_active FROM users WHERE email = $1`
	err := s.db.QueryRowContext(ctx, query, email).Scan(&userID, &passwordHash, &isActive)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !isActive {
		return nil, ErrUserInactive
	}

	token, tokenHash, err := s.tokens.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	expiresAt := time.Now().Add(SessionTTL)
	insert := `INSERT INTO sessions (user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, NOW())`
	if _, err := s.db.ExecContext(ctx, insert, userID, tokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	identity, err := s.loadIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: identity}, nil
}

// Logout revokes the session belonging to the given token. Revoking an
// already-revoked token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`, s.tokens.HashToken(token))
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IdentityFromToken resolves a session token into a full caller identity,
// including the flattened permission rules from all of the user's roles.
func (s *Service) IdentityFromToken(ctx context.Context, token string) (*Identity, error) {
	if err := s.tokens.ValidateTokenFormat(token); err != nil {
		return nil, ErrInvalidToken
	}

	var userID int64
	query := `SELECT user_id FROM sessions WHERE token_hash = $1 AND expires_at > NOW()`
	err := s.db.QueryRowContext(ctx, query, s.tokens.HashToken(token)).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	return s.loadIdentity(ctx, userID)
}

// LoginWithOIDC opens a session for a user authenticated by the SSO
// provider. The user must already exist; matching is by external id
// first, then by verified email (linking the external id on first SSO
// login). Unknown users are not auto-provisioned.
func (s *Service) LoginWithOIDC(ctx context.Context, oidcUser *OIDCUser) (*LoginResult, error) {
	var (
		userID   int64
		isActive bool
	)

	query := `
		SELECT id, is_active FROM users
		WHERE external_id = $1 OR (external_id IS NULL AND email = $2)
		ORDER BY external_id NULLS LAST
		LIMIT 1`
	err := s.db.QueryRowContext(ctx, query, oidcUser.ExternalID, oidcUser.Email).
		Scan(&userID, &isActive)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up SSO user: %w", err)
	}
	if !isActive {
		return nil, ErrUserInactive
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET external_id = $2, updated_at = NOW() WHERE id = $1`,
		userID, oidcUser.ExternalID); err != nil {
		return nil, fmt.Errorf("failed to link SSO identity: %w", err)
	}

	token, tokenHash, err := s.tokens.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	expiresAt := time.Now().Add(SessionTTL)
	insert := `INSERT INTO sessions (user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, NOW())`
	if _, err := s.db.ExecContext(ctx, insert, userID, tokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	identity, err := s.loadIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: identity}, nil
}

// PurgeExpiredSessions deletes sessions past their expiry. Run periodically
// by the scheduler.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// loadIdentity loads the user row and the permission rules of every active
// role assigned to the user
func (s *Service) loadIdentity(ctx context.Context, userID int64) (*Identity, error) {
	identity := &Identity{UserID: userID}

	query := `
		SELECT uuid, full_name, email, company_id, owned_company_id, branch_id, is_active
		FROM users
		WHERE id = $1
	`

	var isActive bool
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&identity.UUID,
		&identity.FullName,
		&identity.Email,
		&identity.CompanyID,
		&identity.OwnedCompanyID,
		&identity.BranchID,
		&isActive,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !isActive {
		return nil, ErrUserInactive
	}

	roleQuery := `
		SELECT r.code, r.permissions
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.is_active = true
	`

	rows, err := s.db.QueryContext(ctx, roleQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	var ruleSets [][]acl.Rule
	for rows.Next() {
		var (
			code            string
			permissionsJSON []byte
		)
		if err := rows.Scan(&code, &permissionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}

		var rules []acl.Rule
		if len(permissionsJSON) > 0 {
			if err := json.Unmarshal(permissionsJSON, &rules); err != nil {
				return nil, fmt.Errorf("failed to parse permissions for role %s: %w", code, err)
			}
		}

		identity.RoleCodes = append(identity.RoleCodes, code)
		ruleSets = append(ruleSets, rules)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}

	identity.Rules = acl.Flatten(ruleSets...)
	return identity, nil
}

// HashPassword produces a bcrypt hash for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its stored hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
