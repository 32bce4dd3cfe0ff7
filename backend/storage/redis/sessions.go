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

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cipherboard/cipherboard/backend/models"
)

const sessionPrefix = "session:" // session:{token} - user id

// SessionStore keeps login sessions in Redis so that logout revokes a
// token immediately and TTLs expire idle sessions without a sweeper.
type SessionStore struct {
	rdb *redis.Client
	ctx context.Context
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{
		rdb: rdb,
		ctx: context.Background(),
	}
}

func (s *SessionStore) SaveSession(token, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(s.ctx, sessionPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSession(token string) (string, error) {
	userID, err := s.rdb.Get(s.ctx, sessionPrefix+token).Result()
	if err == redis.Nil {
		return "", models.ErrInvalidSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	return userID, nil
}

func (s *SessionStore) DeleteSession(token string) error {
	if err := s.rdb.Del(s.ctx, sessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
