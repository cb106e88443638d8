// Command migrate creates the service schema and seeds the first
// application credential.  It is idempotent: tables are created only
// when missing and the seed is skipped when the username already
// exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/micebot/server/internal/config"
	"github.com/micebot/server/internal/database"
	"github.com/micebot/server/internal/repository"
)

// Schema notes: `order` is backticked because it is a reserved word.
// The unique index on order.product_id is the schema-level half of the
// at-most-one-order-per-product invariant; the conditional update in
// the order repository is the other half.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS application (
		id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username  VARCHAR(64)  NOT NULL,
		pass_hash VARCHAR(128) NOT NULL,
		UNIQUE KEY ux_application_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS product (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		uuid       CHAR(36)     NOT NULL,
		code       VARCHAR(64)  NOT NULL,
		summary    VARCHAR(255) NOT NULL DEFAULT '',
		taken      BOOLEAN      NOT NULL DEFAULT FALSE,
		taken_at   DATETIME     NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY ux_product_uuid (uuid),
		UNIQUE KEY ux_product_code (code),
		KEY ix_product_taken_created (taken, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	"CREATE TABLE IF NOT EXISTS `order` (" + `
		id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		uuid               CHAR(36)     NOT NULL,
		mod_id             VARCHAR(64)  NOT NULL,
		mod_display_name   VARCHAR(128) NOT NULL,
		owner_display_name VARCHAR(128) NOT NULL,
		requested_at       DATETIME     NOT NULL,
		product_id         BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY ux_order_uuid (uuid),
		UNIQUE KEY ux_order_product (product_id),
		KEY ix_order_requested (requested_at),
		CONSTRAINT fk_order_product FOREIGN KEY (product_id) REFERENCES product (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Fatal("apply schema", zap.Error(err))
		}
	}
	logger.Info("schema up to date")

	// Seed one credential when APP_USERNAME/APP_PASSWORD are provided.
	username := os.Getenv("APP_USERNAME")
	password := os.Getenv("APP_PASSWORD")
	if username == "" || password == "" {
		logger.Info("no APP_USERNAME/APP_PASSWORD set, skipping credential seed")
		return
	}

	apps := repository.NewApplicationRepo(db)
	id, err := apps.Create(ctx, username, password, cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrUsernameExists {
			logger.Info("credential already provisioned", zap.String("username", username))
			return
		}
		logger.Fatal("seed credential", zap.Error(err))
	}
	logger.Info("credential provisioned", zap.String("username", username), zap.Uint64("id", id))
}
