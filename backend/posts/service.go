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

package posts

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cipherboard/cipherboard/backend/crypto"
	"github.com/cipherboard/cipherboard/backend/groups"
	"github.com/cipherboard/cipherboard/backend/models"
	"github.com/cipherboard/cipherboard/backend/storage"
)

type Service struct {
	store  storage.Store
	groups *groups.Service
	keys   *crypto.Keystore
}

func NewService(store storage.Store, groupSvc *groups.Service, keys *crypto.Keystore) *Service {
	return &Service{store: store, groups: groupSvc, keys: keys}
}

// Create encrypts text for the author and every current coworker and
// persists the post. A crypto fault here aborts the operation and is
// surfaced verbatim; there is no partially encrypted post.
func (s *Service) Create(authorID, text string) (*models.Post, error) {
	recipients, err := s.groups.CoworkerCertificates(authorID)
	if err != nil {
		return nil, err
	}
	// An author in no group still encrypts to themselves.
	if _, ok := recipients[authorID]; !ok {
		author, err := s.store.GetUser(authorID)
		if err != nil {
			return nil, err
		}
		pub, err := crypto.PublicKeyFromCertificate(author.Certificate)
		if err != nil {
			return nil, err
		}
		recipients[authorID] = pub
	}

	env, err := crypto.Seal([]byte(text), recipients)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		CreatedAt: time.Now(),
		Envelope:  env,
	}
	if err := s.store.CreatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Mine returns the caller's own posts, newest first, decrypted with the
// caller's private key.
func (s *Service) Mine(userID string) ([]models.PostView, error) {
	posts, err := s.store.PostsByAuthor(userID)
	if err != nil {
		return nil, err
	}
	return s.openPosts(userID, posts)
}

// Feed returns posts authored by the caller's coworkers, newest first,
// decrypted with the caller's private key. The caller's own posts are
// excluded.
func (s *Service) Feed(userID string) ([]models.PostView, error) {
	set, err := s.groups.CoworkerSet(userID)
	if err != nil {
		return nil, err
	}
	delete(set, userID)
	if len(set) == 0 {
		return nil, nil
	}

	authors := make([]string, 0, len(set))
	for id := range set {
		authors = append(authors, id)
	}
	posts, err := s.store.PostsByAuthors(authors)
	if err != nil {
		return nil, err
	}
	return s.openPosts(userID, posts)
}

// Explore returns recent posts from outside the caller's circle. These
// envelopes carry no wrapped key for the caller and stay opaque.
func (s *Service) Explore(userID string, limit int) ([]models.Post, error) {
	set, err := s.groups.CoworkerSet(userID)
	if err != nil {
		return nil, err
	}
	set[userID] = struct{}{}
	exclude := make([]string, 0, len(set))
	for id := range set {
		exclude = append(exclude, id)
	}
	return s.store.RecentPosts(limit, exclude)
}

// Delete removes a post. Only the author may delete it.
func (s *Service) Delete(postID, callerID string) error {
	post, err := s.store.GetPost(postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return models.ErrNotAuthor
	}
	return s.store.DeletePost(postID)
}

// openPosts decrypts posts for userID and sorts them newest first.
// A post with no wrapped key for the caller is simply not theirs to read
// (stale access during a membership change) and is filtered out; a true
// decryption fault is logged and the post skipped, never returned as
// garbage.
func (s *Service) openPosts(userID string, posts []models.Post) ([]models.PostView, error) {
	if len(posts) == 0 {
		return nil, nil
	}
	priv, err := s.keys.Load(userID)
	if err != nil {
		return nil, err
	}

	usernames := make(map[string]string)
	views := make([]models.PostView, 0, len(posts))
	for _, post := range posts {
		plaintext, err := crypto.Open(post.Envelope, userID, priv)
		if errors.Is(err, models.ErrAccessDenied) {
			continue
		}
		if err != nil {
			log.Printf("failed to decrypt post %s for user %s: %v", post.ID, userID, err)
			continue
		}

		author, ok := usernames[post.AuthorID]
		if !ok {
			if user, err := s.store.GetUser(post.AuthorID); err == nil {
				author = user.Username
			}
			usernames[post.AuthorID] = author
		}

		views = append(views, models.PostView{
			ID:        post.ID,
			AuthorID:  post.AuthorID,
			Author:    author,
			CreatedAt: post.CreatedAt,
			Text:      string(plaintext),
		})
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}
