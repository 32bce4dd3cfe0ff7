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
	"log"

	"github.com/cipherboard/cipherboard/backend/crypto"
)

// PostFailure records one post the sweep could not re-encrypt.
type PostFailure struct {
	PostID string `json:"post_id"`
	Reason string `json:"reason"`
}

// Report is the outcome of one re-encryption sweep. A non-empty Failures
// list alongside a non-empty Updated list is the accepted partial-failure
// state: per-post replacement is atomic, the batch is not.
type Report struct {
	Updated  []string      `json:"updated"`
	Failures []PostFailure `json:"failures,omitempty"`
}

func (r *Report) fail(postID string, err error) {
	r.Failures = append(r.Failures, PostFailure{PostID: postID, Reason: err.Error()})
}

// Reencrypt re-establishes the envelope invariant for every post authored
// by a current member of the admin's group: each envelope's recipient set
// is rebuilt as author plus the author's live coworker union, under a
// fresh content key.
//
// Membership is read once, up front. The sweep is sequential and each
// post is independent: a failure is reported and the sweep moves on.
// Re-running with unchanged membership is idempotent with respect to the
// recipient sets (ciphertexts differ, decryptability does not). A post
// carrying no wrapped key for the acting admin cannot be opened and is
// skipped and reported, never silently dropped.
func (s *Service) Reencrypt(groupName, adminID string) (*Report, error) {
	group, err := s.store.GetGroupByNameAndAdmin(groupName, adminID)
	if err != nil {
		return nil, err
	}

	// Without the admin's private key nothing can be opened at all;
	// that is fatal, not a partial failure.
	adminKey, err := s.keys.Load(adminID)
	if err != nil {
		return nil, fmt.Errorf("load admin key: %w", err)
	}

	report := &Report{}
	for _, memberID := range group.Members {
		posts, err := s.store.PostsByAuthor(memberID)
		if err != nil {
			return nil, fmt.Errorf("list posts by %s: %w", memberID, err)
		}
		if len(posts) == 0 {
			continue
		}

		// The author's full recipient set, not just this group: a member
		// of two groups keeps both audiences.
		recipients, err := s.CoworkerCertificates(memberID)
		if err != nil {
			for _, post := range posts {
				report.fail(post.ID, err)
			}
			continue
		}

		for _, post := range posts {
			plaintext, err := crypto.Open(post.Envelope, adminID, adminKey)
			if err != nil {
				report.fail(post.ID, err)
				continue
			}
			env, err := crypto.Seal(plaintext, recipients)
			if err != nil {
				report.fail(post.ID, err)
				continue
			}
			if err := s.store.ReplaceEnvelope(post.ID, env); err != nil {
				report.fail(post.ID, err)
				continue
			}
			report.Updated = append(report.Updated, post.ID)
		}
	}

	if len(report.Failures) > 0 {
		log.Printf("re-encryption of group %s: %d updated, %d failed",
			group.Name, len(report.Updated), len(report.Failures))
	}
	return report, nil
}
