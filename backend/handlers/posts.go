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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cipherboard/cipherboard/backend/models"
	"github.com/cipherboard/cipherboard/backend/posts"
)

const defaultExploreLimit = 50

type PostHandler struct {
	posts *posts.Service
}

func NewPostHandler(postSvc *posts.Service) *PostHandler {
	return &PostHandler{posts: postSvc}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "Post text is required", http.StatusBadRequest)
		return
	}

	post, err := h.posts.Create(userID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"post_id": post.ID})
}

func (h *PostHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	views, err := h.posts.Mine(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writePostViews(w, views)
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	views, err := h.posts.Feed(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writePostViews(w, views)
}

// Explore serves envelopes the caller cannot open: posts from outside
// their groups, ciphertext and all. Only metadata is meaningful here.
func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	limit := defaultExploreLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	exploredPosts, err := h.posts.Explore(userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if exploredPosts == nil {
		exploredPosts = []models.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exploredPosts)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	vars := mux.Vars(r)

	if err := h.posts.Delete(vars["id"], userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

func writePostViews(w http.ResponseWriter, views []models.PostView) {
	if views == nil {
		views = []models.PostView{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}
