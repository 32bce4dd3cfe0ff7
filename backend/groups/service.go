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

// Package groups owns group membership and the re-encryption that keeps
// every envelope's recipient set in step with live membership.
package groups

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cipherboard/cipherboard/backend/crypto"
	"github.com/cipherboard/cipherboard/backend/models"
	"github.com/cipherboard/cipherboard/backend/storage"
)

type Service struct {
	store storage.Store
	keys  *crypto.Keystore
}

func NewService(store storage.Store, keys *crypto.Keystore) *Service {
	return &Service{store: store, keys: keys}
}

// CreateGroup registers a group administered by adminID, with the admin
// as its first member. Duplicate names and second groups per admin are
// conflicts.
func (s *Service) CreateGroup(name, adminID string) (*models.Group, error) {
	group := &models.Group{
		ID:        uuid.New().String(),
		Name:      name,
		AdminID:   adminID,
		Members:   []string{adminID},
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds the named user to the admin's group and synchronously
// re-encrypts every affected post so the new member can read the group's
// history. The returned report lists per-post outcomes.
func (s *Service) AddMember(groupName, adminID, username string) (*Report, error) {
	target, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroupByNameAndAdmin(groupName, adminID)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddMember(group.ID, target.ID); err != nil {
		return nil, err
	}
	return s.Reencrypt(groupName, adminID)
}

// RemoveMember removes the named user from the admin's group and
// synchronously re-encrypts the remaining members' posts under fresh
// content keys, cutting the removed user's access. The removed user's
// own authored posts keep their envelopes; only their access to others'
// posts is revoked.
func (s *Service) RemoveMember(groupName, adminID, username string) (*Report, error) {
	target, err := s.store.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroupByNameAndAdmin(groupName, adminID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemoveMember(group.ID, target.ID); err != nil {
		return nil, err
	}
	return s.Reencrypt(groupName, adminID)
}

// CoworkerSet is the union of members across every group containing
// userID. It includes userID itself whenever the user belongs to at
// least one group, and is empty otherwise.
func (s *Service) CoworkerSet(userID string) (map[string]struct{}, error) {
	groups, err := s.store.GroupsContaining(userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, group := range groups {
		for _, memberID := range group.Members {
			set[memberID] = struct{}{}
		}
	}
	return set, nil
}

// CoworkerCertificates resolves the coworker set to live public keys
// from the shared directory. A member with a missing or malformed
// certificate fails the whole resolution; callers decide how to recover.
func (s *Service) CoworkerCertificates(userID string) (map[string]*rsa.PublicKey, error) {
	set, err := s.CoworkerSet(userID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(set))
	for memberID := range set {
		member, err := s.store.GetUser(memberID)
		if err != nil {
			return nil, fmt.Errorf("resolve member %s: %w", memberID, err)
		}
		pub, err := crypto.PublicKeyFromCertificate(member.Certificate)
		if err != nil {
			return nil, fmt.Errorf("certificate for %s: %w", memberID, err)
		}
		keys[memberID] = pub
	}
	return keys, nil
}
