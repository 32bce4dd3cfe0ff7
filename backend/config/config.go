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

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"postgres://localhost/cipherboard?sslmode=disable"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	// KeysDir is the local trust boundary for private keys. It must not
	// live on shared storage.
	KeysDir    string        `env:"KEYS_DIR" envDefault:"keys"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
