package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookdeskhq/bookdesk/libs/auth"
	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

type AuthHandler struct {
	operators *storage.OperatorRepository
	logger    *slog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(operators *storage.OperatorRepository, logger *slog.Logger, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		operators: operators,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

// Login serves POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		httpx.BadRequest(w, "email and password are required")
		return
	}

	op, err := h.operators.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("load operator failed", "err", err)
		httpx.Internal(w)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)) != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:      op.ID,
		ClientID: op.ClientID,
		Iat:      now.Unix(),
		Exp:      now.Add(h.tokenTTL).Unix(),
	}, h.jwtSecret)
	if err != nil {
		h.logger.Error("sign token failed", "err", err)
		httpx.Internal(w)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, ClientID: op.ClientID})
}

type claimsKey struct{}

// ClaimsFromContext returns the operator claims set by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// RequireAuth rejects requests without a valid bearer token and pins the
// request to the operator's tenant: a `client` query parameter naming any
// other tenant is refused here, and handlers that read the tenant from the
// request body check the context claims the same way.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := auth.ParseAndVerifyHS256(strings.TrimPrefix(header, "Bearer "), h.jwtSecret)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if c := clientParam(r); c != "" && c != claims.ClientID {
			forbidden(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// HashPassword is used by the operator provisioning tool.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
