package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

// revision — одна ревизия схемы прачечной. Файлы лежат в
// sql/migrations/ парами <version>_<name>.up.sql / .down.sql.
type revision struct {
	version int64
	name    string
}

// revisions перечисляет ревизии схемы в порядке применения. Новая
// миграция — новая запись здесь плюс пара файлов рядом с остальными.
var revisions = []revision{
	{version: 1, name: "core"},
	{version: 2, name: "outbox_idempotency"},
}

func (r revision) filename(direction string) string {
	return fmt.Sprintf("sql/migrations/%04d_%s.%s.sql", r.version, r.name, direction)
}

// load читает тело миграции из встроенных файлов.
func (r revision) load(fsys fs.FS, direction string) (string, error) {
	raw, err := fs.ReadFile(fsys, r.filename(direction))
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", r.filename(direction), err)
	}
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return "", fmt.Errorf("migration %s is empty", r.filename(direction))
	}
	return body, nil
}

const (
	// Ключ advisory-лока: одновременно мигрирует только один процесс.
	migrationLockKey = int64(73120546)

	migrationTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

// MigrateUp применяет недостающие ревизии. steps=0 — все.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.withMigrationLock(ctx, func(conn *sql.Conn) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		done := 0
		for _, rev := range revisions {
			if applied[rev.version] {
				continue
			}
			if steps > 0 && done >= steps {
				break
			}
			if err := applyRevision(ctx, conn, rev); err != nil {
				return err
			}
			done++
		}
		return nil
	})
}

// MigrateDown откатывает применённые ревизии с конца. steps<=0 — одну.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.withMigrationLock(ctx, func(conn *sql.Conn) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		done := 0
		for i := len(revisions) - 1; i >= 0 && done < steps; i-- {
			rev := revisions[i]
			if !applied[rev.version] {
				continue
			}
			if err := rollbackRevision(ctx, conn, rev); err != nil {
				return err
			}
			done++
		}
		return nil
	})
}

// MigrationStatus возвращает текущую версию схемы и число ревизий.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, fmt.Errorf("postgres store is not initialized")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(queryCtx, migrationTableDDL); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	var (
		version int64
		count   int
	)
	err := s.db.QueryRowContext(queryCtx, `
		SELECT COALESCE(MAX(version), 0), COUNT(*)
		FROM schema_migrations
	`).Scan(&version, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("query migration status: %w", err)
	}
	return version, count, nil
}

// withMigrationLock берёт advisory-лок и готовит таблицу ревизий перед fn.
func (s *Store) withMigrationLock(ctx context.Context, fn func(*sql.Conn) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return fn(conn)
}

func applyRevision(ctx context.Context, conn *sql.Conn, rev revision) error {
	body, err := rev.load(migrationsFS, "up")
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (up %d): %w", rev.version, err)
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %04d_%s: %w", rev.version, rev.name, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, name, applied_at)
		VALUES ($1, $2, NOW())
	`, rev.version, rev.name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %04d_%s: %w", rev.version, rev.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %04d_%s: %w", rev.version, rev.name, err)
	}
	return nil
}

func rollbackRevision(ctx context.Context, conn *sql.Conn, rev revision) error {
	body, err := rev.load(migrationsFS, "down")
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (down %d): %w", rev.version, err)
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("rollback migration %04d_%s: %w", rev.version, rev.name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, rev.version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete migration record %04d_%s: %w", rev.version, rev.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollback %04d_%s: %w", rev.version, rev.name, err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool, len(revisions))
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}
