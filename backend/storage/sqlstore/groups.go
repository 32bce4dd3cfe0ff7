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
	"time"

	"github.com/cipherboard/cipherboard/backend/models"
)

func (s *SQLStore) CreateGroup(group *models.Group) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(s.rebind(
		`SELECT EXISTS (SELECT 1 FROM groups WHERE name = ?)`),
		group.Name).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicateGroupName
	}

	if err := tx.QueryRow(s.rebind(
		`SELECT EXISTS (SELECT 1 FROM groups WHERE admin_id = ?)`),
		group.AdminID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return models.ErrAdminHasGroup
	}

	_, err = tx.Exec(s.rebind(`
		INSERT INTO groups (group_id, name, admin_id, created_at)
		VALUES (?, ?, ?, ?)`),
		group.ID, group.Name, group.AdminID, group.CreatedAt)
	if err != nil {
		return err
	}

	for _, memberID := range group.Members {
		_, err = tx.Exec(s.rebind(`
			INSERT INTO group_members (group_id, user_id, joined_at)
			VALUES (?, ?, ?)`),
			group.ID, memberID, time.Now())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLStore) GetGroupByNameAndAdmin(name, adminID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRow(s.rebind(`
		SELECT group_id, name, admin_id, created_at
		FROM groups WHERE name = ? AND admin_id = ?`),
		name, adminID).Scan(
		&group.ID, &group.Name, &group.AdminID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	group.Members, err = s.groupMembers(group.ID)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *SQLStore) GroupsContaining(userID string) ([]models.Group, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT g.group_id, g.name, g.admin_id, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.group_id
		WHERE m.user_id = ?`),
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.AdminID, &group.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		if groups[i].Members, err = s.groupMembers(groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *SQLStore) AddMember(groupID, userID string) error {
	var exists bool
	err := s.db.QueryRow(s.rebind(
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)`),
		groupID, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrAlreadyMember
	}

	_, err = s.db.Exec(s.rebind(`
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES (?, ?, ?)`),
		groupID, userID, time.Now())
	return err
}

func (s *SQLStore) RemoveMember(groupID, userID string) error {
	res, err := s.db.Exec(s.rebind(`
		DELETE FROM group_members
		WHERE group_id = ? AND user_id = ?`),
		groupID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotMember
	}
	return nil
}

func (s *SQLStore) groupMembers(groupID string) ([]string, error) {
	rows, err := s.db.Query(s.rebind(`
		SELECT user_id FROM group_members
		WHERE group_id = ?`),
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}
	return members, rows.Err()
}
