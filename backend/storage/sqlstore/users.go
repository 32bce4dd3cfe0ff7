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

package sqlstore

import (
	"database/sql"

	"github.com/cipherboard/cipherboard/backend/models"
)

func (s *SQLStore) CreateUser(user *models.User) error {
	var exists bool
	err := s.db.QueryRow(s.rebind(
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`),
		user.Username).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrUsernameTaken
	}

	_, err = s.db.Exec(s.rebind(`
		INSERT INTO users (user_id, username, email, password_hash, certificate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		user.ID, user.Username, user.Email, user.PasswordHash, user.Certificate, user.CreatedAt)
	return err
}

func (s *SQLStore) GetUser(id string) (*models.User, error) {
	return s.getUser(`user_id`, id)
}

func (s *SQLStore) GetUserByUsername(username string) (*models.User, error) {
	return s.getUser(`username`, username)
}

func (s *SQLStore) getUser(column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(s.rebind(`
		SELECT user_id, username, email, password_hash, certificate, created_at
		FROM users WHERE `+column+` = ?`), value).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Certificate, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
