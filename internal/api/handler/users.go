package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	mw "github.com/agrexhq/agrex/internal/api/middleware"
	"github.com/agrexhq/agrex/internal/api/response"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const apiKeyPrefix = "agx_"

// NewRegisterUserHandler returns the handler for POST /api/v1/users.
// It creates the account and issues its first API key; the raw key is
// returned exactly once.
func NewRegisterUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Password  string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Username == "" || req.Email == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "username and email are required", nil)
			return
		}
		if len(req.Password) < 8 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "password must be at least 8 characters", nil)
			return
		}

		pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		now := time.Now().UTC()
		user := &models.User{
			ID:           uuid.New(),
			Username:     req.Username,
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: string(pwHash),
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.CreateUser(r.Context(), user); err != nil {
			writeServiceError(w, err)
			return
		}

		rawKey, key, err := mintAPIKey(user.ID, "default")
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := s.CreateAPIKey(r.Context(), key); err != nil {
			writeServiceError(w, err)
			return
		}

		response.Created(w, map[string]any{
			"user":    user,
			"api_key": rawKey,
		})
	}
}

// NewGetUserHandler returns the handler for GET /api/v1/users/{userID}.
func NewGetUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlUUID(w, r, "userID")
		if !ok {
			return
		}
		user, err := s.GetUser(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, user)
	}
}

// NewUpdateUserHandler returns the handler for PUT /api/v1/users/{userID}.
// Users may only update their own account.
func NewUpdateUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		id, ok := urlUUID(w, r, "userID")
		if !ok {
			return
		}
		if id != callerID {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "Not authorized to modify this user", nil)
			return
		}

		var req struct {
			Email     *string `json:"email"`
			FirstName *string `json:"first_name"`
			LastName  *string `json:"last_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		user, err := s.GetUser(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if req.Email != nil {
			user.Email = *req.Email
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if err := s.UpdateUser(r.Context(), user); err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, user)
	}
}

// NewDeleteUserHandler returns the handler for DELETE /api/v1/users/{userID}.
func NewDeleteUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing caller identity", nil)
			return
		}
		id, ok := urlUUID(w, r, "userID")
		if !ok {
			return
		}
		if id != callerID {
			response.Error(w, http.StatusForbidden, "FORBIDDEN", "Not authorized to delete this user", nil)
			return
		}
		if err := s.DeleteUser(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// mintAPIKey generates a raw key and its stored representation.
func mintAPIKey(userID uuid.UUID, name string) (string, *models.APIKey, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}
	rawKey := apiKeyPrefix + hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	return rawKey, &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
