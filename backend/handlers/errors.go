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
	"errors"
	"log"
	"net/http"

	"github.com/cipherboard/cipherboard/backend/models"
)

// writeError maps the error taxonomy onto HTTP statuses. Expected
// negative outcomes keep their message; anything unrecognized is a fault
// and is logged server-side but never echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrPostNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrNotAuthor):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrUsernameTaken),
		errors.Is(err, models.ErrDuplicateGroupName),
		errors.Is(err, models.ErrAdminHasGroup),
		errors.Is(err, models.ErrAlreadyMember),
		errors.Is(err, models.ErrNotMember):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
