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

package models

import (
	"time"
)

// User is the shared directory record. The private key half of the
// identity is never part of this record; only the certificate is published.
type User struct {
	ID           string    `json:"id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Certificate  []byte    `json:"certificate" db:"certificate"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Group membership always includes the admin. A user administers at
// most one group.
type Group struct {
	ID        string    `json:"id" db:"group_id"`
	Name      string    `json:"name" db:"name"`
	AdminID   string    `json:"admin_id" db:"admin_id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Envelope is a single symmetric ciphertext plus the content key wrapped
// once per authorized recipient. Ciphertext and wrapped keys are only
// ever persisted together.
type Envelope struct {
	Ciphertext  []byte            `json:"ciphertext"`
	WrappedKeys map[string][]byte `json:"wrapped_keys"`
}

// Recipients returns the set of user ids able to unwrap the content key.
func (e Envelope) Recipients() []string {
	ids := make([]string, 0, len(e.WrappedKeys))
	for id := range e.WrappedKeys {
		ids = append(ids, id)
	}
	return ids
}

type Post struct {
	ID        string    `json:"id" db:"post_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Envelope  Envelope  `json:"envelope"`
}

// PostView is a post after server-side decryption for the requesting user.
type PostView struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
}
