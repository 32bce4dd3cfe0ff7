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
	"fmt"
	"sort"
	"testing"
)

func recipientsOf(t *testing.T, env *testEnv, postID string) []string {
	t.Helper()
	post, err := env.store.GetPost(postID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	ids := post.Envelope.Recipients()
	sort.Strings(ids)
	return ids
}

func TestAddMemberPropagatesHistory(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	if _, err := env.svc.CreateGroup("engineering", alice); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	alicePost := env.createPost(t, alice, "written before bob joined")

	if _, err := env.svc.AddMember("engineering", alice, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	bob, err := env.store.GetUserByUsername("bob")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	bobPost := env.createPost(t, bob.ID, "bob's post")

	report, err := env.svc.AddMember("engineering", alice, "carol")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("Expected no failures, got %v", report.Failures)
	}
	if len(report.Updated) != 2 {
		t.Errorf("Expected 2 updated posts, got %d", len(report.Updated))
	}

	// Carol gained the whole shared history, including pre-join posts.
	for _, postID := range []string{alicePost, bobPost} {
		if !env.canDecrypt(t, postID, carol) {
			t.Errorf("carol cannot decrypt post %s after joining", postID)
		}
	}
}

func TestRemoveMemberRevokesAccess(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")
	env.createUser(t, "carol")

	if _, err := env.svc.CreateGroup("engineering", alice); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.svc.AddMember("engineering", alice, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if _, err := env.svc.AddMember("engineering", alice, "carol"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	bob, _ := env.store.GetUserByUsername("bob")
	carol, _ := env.store.GetUserByUsername("carol")
	alicePost := env.createPost(t, alice, "from alice")
	bobPost := env.createPost(t, bob.ID, "from bob")
	carolPost := env.createPost(t, carol.ID, "from carol")

	report, err := env.svc.RemoveMember("engineering", alice, "carol")
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("Expected no failures, got %v", report.Failures)
	}

	// Carol lost the remaining members' posts.
	for _, postID := range []string{alicePost, bobPost} {
		if env.canDecrypt(t, postID, carol.ID) {
			t.Errorf("carol can still decrypt post %s after removal", postID)
		}
	}
	// The remaining members kept them.
	for _, postID := range []string{alicePost, bobPost} {
		if !env.canDecrypt(t, postID, alice) || !env.canDecrypt(t, postID, bob.ID) {
			t.Errorf("remaining member lost access to post %s", postID)
		}
	}
	// Carol's own history is not retroactively stripped.
	if !env.canDecrypt(t, carolPost, carol.ID) {
		t.Error("carol lost access to her own post")
	}
	if !env.canDecrypt(t, carolPost, alice) {
		t.Error("alice lost access to carol's pre-removal post")
	}
}

func TestReencryptIdempotent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")

	if _, err := env.svc.CreateGroup("engineering", alice); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.svc.AddMember("engineering", alice, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	postID := env.createPost(t, alice, "steady state")

	if _, err := env.svc.Reencrypt("engineering", alice); err != nil {
		t.Fatalf("Reencrypt failed: %v", err)
	}
	first := recipientsOf(t, env, postID)

	if _, err := env.svc.Reencrypt("engineering", alice); err != nil {
		t.Fatalf("Reencrypt failed: %v", err)
	}
	second := recipientsOf(t, env, postID)

	if len(first) != len(second) {
		t.Fatalf("Recipient sets differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Recipient sets differ: %v vs %v", first, second)
		}
	}
}

func TestReencryptPartialFailureIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	env.createUser(t, "bob")

	if _, err := env.svc.CreateGroup("engineering", alice); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.svc.AddMember("engineering", alice, "bob"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	bob, _ := env.store.GetUserByUsername("bob")

	postIDs := make([]string, 5)
	for i := range postIDs {
		postIDs[i] = env.createPost(t, bob.ID, fmt.Sprintf("post %d", i))
	}

	// Strip the admin's wrapped key from one post: the coordinator has
	// nothing to open it with.
	broken := postIDs[2]
	post, err := env.store.GetPost(broken)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	delete(post.Envelope.WrappedKeys, alice)
	if err := env.store.ReplaceEnvelope(broken, post.Envelope); err != nil {
		t.Fatalf("ReplaceEnvelope failed: %v", err)
	}

	report, err := env.svc.Reencrypt("engineering", alice)
	if err != nil {
		t.Fatalf("Reencrypt failed: %v", err)
	}

	if len(report.Updated) != 4 {
		t.Errorf("Expected 4 updated posts, got %d", len(report.Updated))
	}
	if len(report.Failures) != 1 {
		t.Fatalf("Expected exactly 1 failure, got %d", len(report.Failures))
	}
	if report.Failures[0].PostID != broken {
		t.Errorf("Expected failure on %s, got %s", broken, report.Failures[0].PostID)
	}

	// The healthy posts were re-encrypted and stay readable.
	for _, postID := range postIDs {
		if postID == broken {
			continue
		}
		if !env.canDecrypt(t, postID, bob.ID) {
			t.Errorf("post %s unreadable after partial-failure sweep", postID)
		}
	}
}

func TestReencryptRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	if _, err := env.svc.CreateGroup("engineering", alice); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if _, err := env.svc.Reencrypt("engineering", bob); err == nil {
		t.Error("Expected an error for a non-admin sweep")
	}
}
