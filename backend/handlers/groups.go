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

	"github.com/gorilla/mux"

	"github.com/cipherboard/cipherboard/backend/groups"
)

type GroupHandler struct {
	groups *groups.Service
}

func NewGroupHandler(groupSvc *groups.Service) *GroupHandler {
	return &GroupHandler{groups: groupSvc}
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Group name is required", http.StatusBadRequest)
		return
	}

	group, err := h.groups.CreateGroup(req.Name, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(group)
}

// AddMember adds a user to the caller's group and returns the
// re-encryption report. Partial failures come back as 200 with the
// failed post ids listed; the membership change itself has succeeded.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	vars := mux.Vars(r)
	groupName := vars["name"]

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	report, err := h.groups.AddMember(groupName, userID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	vars := mux.Vars(r)

	report, err := h.groups.RemoveMember(vars["name"], userID, vars["username"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// Reencrypt lets an admin re-run the sweep for their group, to repair
// posts reported as failed by an earlier membership change.
func (h *GroupHandler) Reencrypt(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	vars := mux.Vars(r)

	report, err := h.groups.Reencrypt(vars["name"], userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (h *GroupHandler) Coworkers(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	set, err := h.groups.CoworkerSet(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	members := make([]string, 0, len(set))
	for id := range set {
		members = append(members, id)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"members": members,
	})
}
