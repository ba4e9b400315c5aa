package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_spaces",
		SQL: `CREATE TABLE IF NOT EXISTS spaces (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id     UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  name        VARCHAR(100) NOT NULL CHECK (char_length(name) >= 1),
  description TEXT        NOT NULL DEFAULT '',
  color       TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (user_id, name)
);`,
	},
	{
		Name: "create_index_spaces_user_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_spaces_user_created ON spaces (user_id, created_at DESC);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  space_id           UUID        NOT NULL REFERENCES spaces (id) ON DELETE CASCADE,
  user_id            UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  original_file_name TEXT        NOT NULL,
  file_type          TEXT        NOT NULL CHECK (file_type IN ('pdf', 'docx', 'pptx', 'txt')),
  storage_path       TEXT        NOT NULL UNIQUE,
  size_in_bytes      BIGINT      NOT NULL CHECK (size_in_bytes >= 0),
  uploaded_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (space_id, original_file_name)
);`,
	},
	{
		Name: "create_index_documents_space_uploaded",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_space_uploaded ON documents (space_id, uploaded_at DESC);`,
	},
	{
		Name: "create_index_documents_user_uploaded",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_user_uploaded ON documents (user_id, uploaded_at DESC);`,
	},
	{
		Name: "create_table_chats",
		SQL: `CREATE TABLE IF NOT EXISTS chats (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  title      TEXT        NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_chats_user_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_chats_user_created ON chats (user_id, created_at DESC);`,
	},
	{
		Name: "create_table_messages",
		SQL: `CREATE TABLE IF NOT EXISTS messages (
  id        UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  chat_id   UUID        NOT NULL REFERENCES chats (id) ON DELETE CASCADE,
  sender    TEXT        NOT NULL CHECK (sender IN ('user', 'assistant')),
  content   TEXT        NOT NULL,
  timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_messages_chat_timestamp",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_messages_chat_timestamp ON messages (chat_id, timestamp);`,
	},
}

// EnsureMigrated creates the schema unless the users table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.users') IS NOT NULL").Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Duration("duration_ms", time.Since(start)),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.Duration("duration_ms", time.Since(start)),
		)
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("step_duration_ms", time.Since(stepStart)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration_ms", time.Since(stepStart)),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("steps", len(steps)),
		zap.Duration("duration_ms", time.Since(start)),
	)
	return nil
}
