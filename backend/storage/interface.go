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

package storage

import (
	"time"

	"github.com/cipherboard/cipherboard/backend/models"
)

type UserStore interface {
	// CreateUser returns models.ErrUsernameTaken on a duplicate username.
	CreateUser(user *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
}

type GroupStore interface {
	// CreateGroup persists a group with its initial member list.
	// Returns models.ErrDuplicateGroupName or models.ErrAdminHasGroup.
	CreateGroup(group *models.Group) error
	// GetGroupByNameAndAdmin is the only group lookup: authorization is
	// part of the query, so "no such group" and "not the admin" are the
	// same models.ErrGroupNotFound.
	GetGroupByNameAndAdmin(name, adminID string) (*models.Group, error)
	// GroupsContaining lists every group whose member set includes userID.
	GroupsContaining(userID string) ([]models.Group, error)
	// AddMember returns models.ErrAlreadyMember on a no-op.
	AddMember(groupID, userID string) error
	// RemoveMember returns models.ErrNotMember on a no-op.
	RemoveMember(groupID, userID string) error
}

type PostStore interface {
	CreatePost(post *models.Post) error
	GetPost(id string) (*models.Post, error)
	// PostsByAuthor returns the author's posts newest first.
	PostsByAuthor(authorID string) ([]models.Post, error)
	PostsByAuthors(authorIDs []string) ([]models.Post, error)
	RecentPosts(limit int, exclude []string) ([]models.Post, error)
	// ReplaceEnvelope swaps a post's ciphertext and wrapped-key map in a
	// single transaction. The two are never updated independently.
	ReplaceEnvelope(postID string, env models.Envelope) error
	DeletePost(id string) error
}

type SessionStore interface {
	SaveSession(token, userID string, ttl time.Duration) error
	// GetSession resolves a token to a user id, or models.ErrInvalidSession.
	GetSession(token string) (string, error)
	DeleteSession(token string) error
}

type Store interface {
	UserStore
	GroupStore
	PostStore
}
