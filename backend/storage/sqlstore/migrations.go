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

import "strings"

func (s *SQLStore) Migrate() error {
	migrations := []string{
		// Shared user directory. password_hash stays server-side only;
		// certificate is the published half of the identity.
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL,
			password_hash BLOB NOT NULL,
			certificate BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		// One group per admin, enforced here and rechecked in CreateGroup
		// for a distinguishable error.
		`CREATE TABLE IF NOT EXISTS groups (
			group_id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			admin_id TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS group_members (
			group_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			joined_at TIMESTAMP NOT NULL,
			PRIMARY KEY (group_id, user_id),
			FOREIGN KEY (group_id) REFERENCES groups(group_id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_member_groups
		ON group_members(user_id)`,

		`CREATE TABLE IF NOT EXISTS posts (
			post_id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			ciphertext BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_posts_author
		ON posts(author_id, created_at DESC)`,

		// One wrapped content key per (post, recipient). Rows are always
		// replaced together with the post ciphertext, inside one tx.
		`CREATE TABLE IF NOT EXISTS post_keys (
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			wrapped_key BLOB NOT NULL,
			PRIMARY KEY (post_id, user_id),
			FOREIGN KEY (post_id) REFERENCES posts(post_id) ON DELETE CASCADE
		)`,
	}

	for _, migration := range migrations {
		if s.driverName == "postgres" {
			migration = strings.ReplaceAll(migration, "BLOB", "BYTEA")
		}
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
