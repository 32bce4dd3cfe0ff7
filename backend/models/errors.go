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

import "errors"

// Ordinary negative outcomes. Callers match with errors.Is; none of these
// is a fault, and none may be swallowed.
var (
	// Not-found class.
	ErrUserNotFound = errors.New("user not found")
	ErrPostNotFound = errors.New("post not found")
	// A group lookup is always by (name, admin) pair, so a missing group
	// and a non-admin caller are indistinguishable on purpose.
	ErrGroupNotFound = errors.New("group not found or caller is not its admin")

	// Unauthorized class.
	ErrNotAuthor = errors.New("caller is not the post author")

	// Conflict class.
	ErrUsernameTaken      = errors.New("username already in use")
	ErrDuplicateGroupName = errors.New("group name already in use")
	ErrAdminHasGroup      = errors.New("user already administers a group")
	ErrAlreadyMember      = errors.New("user is already a member of the group")
	ErrNotMember          = errors.New("user is not a member of the group")

	// ErrAccessDenied means the caller has no wrapped key on an envelope
	// and an unwrap cannot even be attempted. Distinct from a failed
	// unwrap (crypto.DecryptionError), which means corrupt data or a
	// wrong key.
	ErrAccessDenied = errors.New("caller is not an authorized recipient")

	ErrInvalidSession = errors.New("invalid or expired session")
)
