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

package groups

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cipherboard/cipherboard/backend/crypto"
	"github.com/cipherboard/cipherboard/backend/models"
	"github.com/cipherboard/cipherboard/backend/storage/sqlstore"
)

type testEnv struct {
	store *sqlstore.SQLStore
	keys  *crypto.Keystore
	svc   *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	keys := crypto.NewKeystore(t.TempDir())
	return &testEnv{store: store, keys: keys, svc: NewService(store, keys)}
}

// createUser provisions a full identity: key pair in the keystore,
// certificate in the user record.
func (e *testEnv) createUser(t *testing.T, username string) string {
	t.Helper()
	id := uuid.New().String()
	priv, certPEM, err := crypto.IssueIdentity(id)
	if err != nil {
		t.Fatalf("IssueIdentity failed: %v", err)
	}
	if err := e.keys.Save(id, priv); err != nil {
		t.Fatalf("Keystore save failed: %v", err)
	}
	err = e.store.CreateUser(&models.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: []byte("hash"),
		Certificate:  certPEM,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return id
}

// createPost seals text for the author's live recipient set, the way the
// post service does at creation time.
func (e *testEnv) createPost(t *testing.T, authorID, text string) string {
	t.Helper()
	recipients, err := e.svc.CoworkerCertificates(authorID)
	if err != nil {
		t.Fatalf("CoworkerCertificates failed: %v", err)
	}
	if _, ok := recipients[authorID]; !ok {
		author, err := e.store.GetUser(authorID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		pub, err := crypto.PublicKeyFromCertificate(author.Certificate)
		if err != nil {
			t.Fatalf("PublicKeyFromCertificate failed: %v", err)
		}
		recipients[authorID] = pub
	}

	env, err := crypto.Seal([]byte(text), recipients)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		CreatedAt: time.Now(),
		Envelope:  env,
	}
	if err := e.store.CreatePost(post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return post.ID
}

func (e *testEnv) canDecrypt(t *testing.T, postID, userID string) bool {
	t.Helper()
	post, err := e.store.GetPost(postID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	priv, err := e.keys.Load(userID)
	if err != nil {
		t.Fatalf("Keystore load failed: %v", err)
	}
	_, err = crypto.Open(post.Envelope, userID, priv)
	return err == nil
}

func TestCreateGroupConflicts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "alice")
	other := env.createUser(t, "bob")

	if _, err := env.svc.CreateGroup("engineering", admin); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err := env.svc.CreateGroup("engineering", other)
	if !errors.Is(err, models.ErrDuplicateGroupName) {
		t.Errorf("Expected ErrDuplicateGroupName, got %v", err)
	}

	_, err = env.svc.CreateGroup("engineering-2", admin)
	if !errors.Is(err, models.ErrAdminHasGroup) {
		t.Errorf("Expected ErrAdminHasGroup, got %v", err)
	}
}

func TestAddMemberOutcomes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "alice")
	env.createUser(t, "bob")

	if _, err := env.svc.CreateGroup("engineering", admin); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if _, err := env.svc.AddMember("engineering", admin, "ghost"); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if _, err := env.svc.AddMember("missing", admin, "bob"); !errors.Is(err, models.ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}

	if _, err := env.svc.AddMember("engineering", admin, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := env.svc.AddMember("engineering", admin, "bob"); !errors.Is(err, models.ErrAlreadyMember) {
		t.Errorf("Expected ErrAlreadyMember, got %v", err)
	}
}

func TestAddMemberDeniedToNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "alice")
	outsider := env.createUser(t, "bob")
	env.createUser(t, "carol")

	if _, err := env.svc.CreateGroup("engineering", admin); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// A non-admin cannot tell "no such group" from "not yours".
	if _, err := env.svc.AddMember("engineering", outsider, "carol"); !errors.Is(err, models.ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}
}

func TestRemoveMemberOutcomes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "alice")
	env.createUser(t, "bob")

	if _, err := env.svc.CreateGroup("engineering", admin); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if _, err := env.svc.RemoveMember("engineering", admin, "bob"); !errors.Is(err, models.ErrNotMember) {
		t.Errorf("Expected ErrNotMember, got %v", err)
	}

	if _, err := env.svc.AddMember("engineering", admin, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := env.svc.RemoveMember("engineering", admin, "bob"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
}

func TestCoworkerSetSpansGroups(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	// bob sits in both groups; alice and carol only share bob.
	if _, err := env.svc.CreateGroup("engineering", alice); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.svc.AddMember("engineering", alice, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := env.svc.CreateGroup("design", carol); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.svc.AddMember("design", carol, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	set, err := env.svc.CoworkerSet(bob)
	if err != nil {
		t.Fatalf("CoworkerSet failed: %v", err)
	}
	for _, id := range []string{alice, bob, carol} {
		if _, ok := set[id]; !ok {
			t.Errorf("Expected %s in bob's coworker set", id)
		}
	}

	set, err = env.svc.CoworkerSet(alice)
	if err != nil {
		t.Fatalf("CoworkerSet failed: %v", err)
	}
	if _, ok := set[carol]; ok {
		t.Error("carol should not be in alice's coworker set")
	}

	loner := env.createUser(t, "dave")
	set, err = env.svc.CoworkerSet(loner)
	if err != nil {
		t.Fatalf("CoworkerSet failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("Expected empty coworker set for a user in no group, got %v", set)
	}
}
