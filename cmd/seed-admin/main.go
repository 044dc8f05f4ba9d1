// Command seed-admin creates the administrative account if no admin exists yet.
package main

import (
	"context"
	"os"
	"time"

	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/db"
	"github.com/geocoder89/docvault/internal/observability"
	"github.com/geocoder89/docvault/internal/repo/postgres"
	"github.com/geocoder89/docvault/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger("prod").Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("db migrate failed", "err", err)
		pool.Close()
		os.Exit(1)
	}

	users := postgres.NewUsersRepo(pool, nil)

	created, err := db.EnsureAdminUser(ctx, users, security.NewHasher(cfg.BcryptCost), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Error("seeding admin failed", "err", err)
		pool.Close()
		os.Exit(1)
	}

	if !created {
		log.Info("an admin already exists")
		return
	}

	log.Info("admin created", "email", cfg.AdminEmail)
}
