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

func (s *SQLStore) CreatePost(post *models.Post) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(s.rebind(`
		INSERT INTO posts (post_id, author_id, ciphertext, created_at)
		VALUES (?, ?, ?, ?)`),
		post.ID, post.AuthorID, post.Envelope.Ciphertext, post.CreatedAt)
	if err != nil {
		return err
	}

	if err := insertWrappedKeys(tx, s, post.ID, post.Envelope.WrappedKeys); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLStore) GetPost(id string) (*models.Post, error) {
	post := &models.Post{}
	err := s.db.QueryRow(s.rebind(`
		SELECT post_id, author_id, ciphertext, created_at
		FROM posts WHERE post_id = ?`), id).Scan(
		&post.ID, &post.AuthorID, &post.Envelope.Ciphertext, &post.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	post.Envelope.WrappedKeys, err = s.wrappedKeys(post.ID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *SQLStore) PostsByAuthor(authorID string) ([]models.Post, error) {
	return s.queryPosts(`
		SELECT post_id, author_id, ciphertext, created_at
		FROM posts WHERE author_id = ?
		ORDER BY created_at DESC`, authorID)
}

func (s *SQLStore) PostsByAuthors(authorIDs []string) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(authorIDs))
	for i, id := range authorIDs {
		args[i] = id
	}
	return s.queryPosts(`
		SELECT post_id, author_id, ciphertext, created_at
		FROM posts WHERE author_id IN (`+placeholders(len(authorIDs))+`)
		ORDER BY created_at DESC`, args...)
}

func (s *SQLStore) RecentPosts(limit int, exclude []string) ([]models.Post, error) {
	query := `
		SELECT post_id, author_id, ciphertext, created_at
		FROM posts`
	args := make([]interface{}, 0, len(exclude)+1)
	if len(exclude) > 0 {
		query += ` WHERE author_id NOT IN (` + placeholders(len(exclude)) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	return s.queryPosts(query, args...)
}

func (s *SQLStore) ReplaceEnvelope(postID string, env models.Envelope) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(s.rebind(`
		UPDATE posts SET ciphertext = ? WHERE post_id = ?`),
		env.Ciphertext, postID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrPostNotFound
	}

	_, err = tx.Exec(s.rebind(`DELETE FROM post_keys WHERE post_id = ?`), postID)
	if err != nil {
		return err
	}
	if err := insertWrappedKeys(tx, s, postID, env.WrappedKeys); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLStore) DeletePost(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Explicit key cleanup: SQLite does not enforce the cascade without
	// a pragma.
	if _, err := tx.Exec(s.rebind(`DELETE FROM post_keys WHERE post_id = ?`), id); err != nil {
		return err
	}

	res, err := tx.Exec(s.rebind(`DELETE FROM posts WHERE post_id = ?`), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrPostNotFound
	}

	return tx.Commit()
}

func (s *SQLStore) queryPosts(query string, args ...interface{}) ([]models.Post, error) {
	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Envelope.Ciphertext, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		if posts[i].Envelope.WrappedKeys, err = s.wrappedKeys(posts[i].ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *SQLStore) wrappedKeys(postID string) (map[string][]byte, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT user_id, wrapped_key FROM post_keys
		WHERE post_id = ?`),
		postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string][]byte)
	for rows.Next() {
		var userID string
		var wrapped []byte
		if err := rows.Scan(&userID, &wrapped); err != nil {
			return nil, err
		}
		keys[userID] = wrapped
	}
	return keys, rows.Err()
}

func insertWrappedKeys(tx *sql.Tx, s *SQLStore, postID string, keys map[string][]byte) error {
	for userID, wrapped := range keys {
		_, err := tx.Exec(s.rebind(`
			INSERT INTO post_keys (post_id, user_id, wrapped_key)
			VALUES (?, ?, ?)`),
			postID, userID, wrapped)
		if err != nil {
			return err
		}
	}
	return nil
}
