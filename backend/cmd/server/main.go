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

package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/cipherboard/cipherboard/backend/config"
	"github.com/cipherboard/cipherboard/backend/crypto"
	"github.com/cipherboard/cipherboard/backend/groups"
	"github.com/cipherboard/cipherboard/backend/handlers"
	"github.com/cipherboard/cipherboard/backend/middleware"
	"github.com/cipherboard/cipherboard/backend/posts"
	redisStore "github.com/cipherboard/cipherboard/backend/storage/redis"
	"github.com/cipherboard/cipherboard/backend/storage/sqlstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Database connection
	store, err := sqlstore.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	// Run migrations
	if err := store.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis connection for sessions
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	sessions := redisStore.NewSessionStore(rdb)

	// Local keystore: private keys never reach the shared store
	keystore := crypto.NewKeystore(cfg.KeysDir)

	// Services
	groupSvc := groups.NewService(store, keystore)
	postSvc := posts.NewService(store, groupSvc, keystore)

	// Handlers
	authHandler := handlers.NewAuthHandler(store, sessions, keystore, cfg.SessionTTL)
	groupHandler := handlers.NewGroupHandler(groupSvc)
	postHandler := handlers.NewPostHandler(postSvc)

	// Create auth middleware
	authMiddleware := middleware.NewAuthMiddleware(sessions)

	// Setup router
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(middleware.CORS)

	// Unauthenticated endpoints
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.HandleFunc("/users/me", authHandler.Me).Methods("GET")

	// Group endpoints
	api.HandleFunc("/groups", groupHandler.CreateGroup).Methods("POST")
	api.HandleFunc("/groups/coworkers", groupHandler.Coworkers).Methods("GET")
	api.HandleFunc("/groups/{name}/members", groupHandler.AddMember).Methods("POST")
	api.HandleFunc("/groups/{name}/members/{username}", groupHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/groups/{name}/reencrypt", groupHandler.Reencrypt).Methods("POST")

	// Post endpoints
	api.HandleFunc("/posts", postHandler.CreatePost).Methods("POST")
	api.HandleFunc("/posts/mine", postHandler.Mine).Methods("GET")
	api.HandleFunc("/posts/feed", postHandler.Feed).Methods("GET")
	api.HandleFunc("/posts/explore", postHandler.Explore).Methods("GET")
	api.HandleFunc("/posts/{id}", postHandler.DeletePost).Methods("DELETE")

	// Health check (no auth required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	log.Printf("Listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
