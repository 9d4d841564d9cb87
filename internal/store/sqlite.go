package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/boardcfg/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all access, so a table replace is never observed half-done.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return models.StringPtr(ns.String)
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// replaceTable deletes every row of table and calls insert inside a single
// transaction, so readers see either the old or the new table.
func (s *SQLiteStore) replaceTable(ctx context.Context, table string, insert func(tx *sql.Tx, now time.Time) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace %s: begin tx: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("replace %s: clear: %w", table, err)
	}
	if err := insert(tx, time.Now().UTC()); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace %s: commit tx: %w", table, err)
	}
	return nil
}

// GetConfiguration reads all four tables.
func (s *SQLiteStore) GetConfiguration(ctx context.Context) (*models.Configuration, error) {
	cfg := &models.Configuration{}
	var err error

	if cfg.Roles, err = s.listRoles(ctx); err != nil {
		return nil, err
	}
	if cfg.IssueTypes, err = s.listIssueTypes(ctx); err != nil {
		return nil, err
	}
	if cfg.Statuses, err = s.listStatuses(ctx); err != nil {
		return nil, err
	}
	if cfg.LinkTypes, err = s.listLinkTypes(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

// --- Roles ---

func (s *SQLiteStore) ReplaceRoles(ctx context.Context, roles []models.Role) ([]models.Role, error) {
	stored := make([]models.Role, len(roles))
	err := s.replaceTable(ctx, "workflow_roles", func(tx *sql.Tx, now time.Time) error {
		for i, r := range roles {
			if r.ID == "" {
				r.ID = newULID()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO workflow_roles (id, code, display_name, color, sort_order, is_default, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.Code, r.DisplayName, r.Color, r.SortOrder, boolToInt(r.IsDefault), now,
			)
			if err != nil {
				return fmt.Errorf("insert role %q: %w", r.Code, err)
			}
			stored[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLiteStore) listRoles(ctx context.Context) ([]models.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, display_name, color, sort_order, is_default
		FROM workflow_roles ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	roles := []models.Role{}
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Code, &r.DisplayName, &r.Color, &r.SortOrder, &r.IsDefault); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// --- Issue types ---

func (s *SQLiteStore) ReplaceIssueTypes(ctx context.Context, issueTypes []models.IssueTypeMapping) ([]models.IssueTypeMapping, error) {
	stored := make([]models.IssueTypeMapping, len(issueTypes))
	err := s.replaceTable(ctx, "issue_type_mappings", func(tx *sql.Tx, now time.Time) error {
		for i, it := range issueTypes {
			if it.ID == "" {
				it.ID = newULID()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO issue_type_mappings (id, jira_type_name, board_category, workflow_role_code, updated_at)
				VALUES (?, ?, ?, ?, ?)`,
				it.ID, it.JiraTypeName, string(it.BoardCategory), nullString(it.WorkflowRoleCode), now,
			)
			if err != nil {
				return fmt.Errorf("insert issue type %q: %w", it.JiraTypeName, err)
			}
			stored[i] = it
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLiteStore) listIssueTypes(ctx context.Context) ([]models.IssueTypeMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, jira_type_name, board_category, workflow_role_code
		FROM issue_type_mappings ORDER BY jira_type_name`)
	if err != nil {
		return nil, fmt.Errorf("list issue types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	issueTypes := []models.IssueTypeMapping{}
	for rows.Next() {
		var it models.IssueTypeMapping
		var category string
		var role sql.NullString
		if err := rows.Scan(&it.ID, &it.JiraTypeName, &category, &role); err != nil {
			return nil, fmt.Errorf("scan issue type: %w", err)
		}
		it.BoardCategory = models.BoardCategory(category)
		it.WorkflowRoleCode = stringPtr(role)
		issueTypes = append(issueTypes, it)
	}
	return issueTypes, rows.Err()
}

// --- Statuses ---

func (s *SQLiteStore) ReplaceStatuses(ctx context.Context, statuses []models.StatusMapping) ([]models.StatusMapping, error) {
	stored := make([]models.StatusMapping, len(statuses))
	err := s.replaceTable(ctx, "status_mappings", func(tx *sql.Tx, now time.Time) error {
		for i, st := range statuses {
			if st.ID == "" {
				st.ID = newULID()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO status_mappings (id, jira_status_name, issue_category, status_category, workflow_role_code, sort_order, score_weight, color, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				st.ID, st.JiraStatusName, string(st.IssueCategory), string(st.StatusCategory),
				nullString(st.WorkflowRoleCode), st.SortOrder, st.ScoreWeight, nullString(st.Color), now,
			)
			if err != nil {
				return fmt.Errorf("insert status %q for %s: %w", st.JiraStatusName, st.IssueCategory, err)
			}
			stored[i] = st
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLiteStore) listStatuses(ctx context.Context) ([]models.StatusMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, jira_status_name, issue_category, status_category, workflow_role_code, sort_order, score_weight, color
		FROM status_mappings ORDER BY
			CASE issue_category WHEN 'EPIC' THEN 0 WHEN 'STORY' THEN 1 WHEN 'SUBTASK' THEN 2 ELSE 3 END,
			sort_order, jira_status_name`)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	statuses := []models.StatusMapping{}
	for rows.Next() {
		var st models.StatusMapping
		var issueCategory, statusCategory string
		var role, color sql.NullString
		if err := rows.Scan(&st.ID, &st.JiraStatusName, &issueCategory, &statusCategory,
			&role, &st.SortOrder, &st.ScoreWeight, &color); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		st.IssueCategory = models.BoardCategory(issueCategory)
		st.StatusCategory = models.StatusCategory(statusCategory)
		st.WorkflowRoleCode = stringPtr(role)
		st.Color = stringPtr(color)
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// --- Link types ---

func (s *SQLiteStore) ReplaceLinkTypes(ctx context.Context, linkTypes []models.LinkTypeMapping) ([]models.LinkTypeMapping, error) {
	stored := make([]models.LinkTypeMapping, len(linkTypes))
	err := s.replaceTable(ctx, "link_type_mappings", func(tx *sql.Tx, now time.Time) error {
		for i, lt := range linkTypes {
			if lt.ID == "" {
				lt.ID = newULID()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO link_type_mappings (id, jira_link_type_name, link_category, updated_at)
				VALUES (?, ?, ?, ?)`,
				lt.ID, lt.JiraLinkTypeName, string(lt.LinkCategory), now,
			)
			if err != nil {
				return fmt.Errorf("insert link type %q: %w", lt.JiraLinkTypeName, err)
			}
			stored[i] = lt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *SQLiteStore) listLinkTypes(ctx context.Context) ([]models.LinkTypeMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, jira_link_type_name, link_category
		FROM link_type_mappings ORDER BY jira_link_type_name`)
	if err != nil {
		return nil, fmt.Errorf("list link types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	linkTypes := []models.LinkTypeMapping{}
	for rows.Next() {
		var lt models.LinkTypeMapping
		var category string
		if err := rows.Scan(&lt.ID, &lt.JiraLinkTypeName, &category); err != nil {
			return nil, fmt.Errorf("scan link type: %w", err)
		}
		lt.LinkCategory = models.LinkCategory(category)
		linkTypes = append(linkTypes, lt)
	}
	return linkTypes, rows.Err()
}
