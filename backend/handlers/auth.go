// Copyright (C) 2025 cipherboard <dev@cipherboard.io>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cipherboard/cipherboard/backend/crypto"
	"github.com/cipherboard/cipherboard/backend/middleware"
	"github.com/cipherboard/cipherboard/backend/models"
	"github.com/cipherboard/cipherboard/backend/storage"
)

type AuthHandler struct {
	store      storage.UserStore
	sessions   storage.SessionStore
	keys       *crypto.Keystore
	sessionTTL time.Duration
}

func NewAuthHandler(store storage.UserStore, sessions storage.SessionStore, keys *crypto.Keystore, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{store: store, sessions: sessions, keys: keys, sessionTTL: sessionTTL}
}

// Signup creates the account and issues its identity material in one
// step. The private key lands in the local keystore, the certificate in
// the shared user record. Any identity fault aborts the signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "username, email and password are required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := uuid.New().String()
	priv, certPEM, err := crypto.IssueIdentity(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.keys.Save(userID, priv); err != nil {
		writeError(w, err)
		return
	}

	user := &models.User{
		ID:           userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Certificate:  certPEM,
		CreatedAt:    time.Now(),
	}
	if err := h.store.CreateUser(user); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByUsername(req.Username)
	if err != nil {
		// Same response as a wrong password: no username oracle.
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		writeError(w, err)
		return
	}
	token := hex.EncodeToString(raw)
	if err := h.sessions.SaveSession(token, user.ID, h.sessionTTL); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token":   token,
		"user_id": user.ID,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		http.Error(w, "No session token", http.StatusBadRequest)
		return
	}
	if err := h.sessions.DeleteSession(token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}

// Me returns the caller's shared-directory record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	user, err := h.store.GetUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
