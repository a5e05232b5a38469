package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/camden-git/photocatalog/services"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "photocatalog"

type AuthHandler struct {
	Access     *services.AccessService
	JWTSecret  []byte
	Expiration time.Duration
}

func NewAuthHandler(access *services.AccessService, jwtSecret []byte, expiration time.Duration) *AuthHandler {
	return &AuthHandler{Access: access, JWTSecret: jwtSecret, Expiration: expiration}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidPayload, "Invalid request payload")
		return
	}

	userID, err := h.Access.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrDenied) {
			WriteAPIError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
			return
		}
		log.Printf("Error authenticating user '%s': %v", payload.Username, err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to check credentials")
		return
	}

	tokenString, expiresAt, err := h.issueToken(userID)
	if err != nil {
		log.Printf("Error signing token for user %d: %v", userID, err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
}

func (h *AuthHandler) issueToken(userID int) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(h.Expiration)
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}
