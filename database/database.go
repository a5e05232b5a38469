package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// fields recorded in the change log
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTags        = "tags"
)

// Change is one recorded mutation of a photo field.
type Change struct {
	ID        string `json:"id"`
	PhotoID   int    `json:"photo_id"`
	UserID    int    `json:"user_id"`
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	ChangedAt int64  `json:"changed_at"` // Unix timestamp
}

func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlStmt := `
	CREATE TABLE IF NOT EXISTS photo_changes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		photo_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		field TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		changed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_photo_changes_photo ON photo_changes(photo_id);
	`
	_, err = db.Exec(sqlStmt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create photo_changes table: %w", err)
	}

	log.Println("database initialized successfully at", dataSourceName)
	return db, nil
}

// RecordChange appends a change. ID and ChangedAt are filled in when empty.
func RecordChange(ctx context.Context, db *sql.DB, change Change) error {
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.ChangedAt == 0 {
		change.ChangedAt = time.Now().Unix()
	}

	queryBuilder := psql.Insert("photo_changes").
		Columns("id", "photo_id", "user_id", "field", "old_value", "new_value", "changed_at").
		Values(change.ID, change.PhotoID, change.UserID, change.Field, change.OldValue, change.NewValue, change.ChangedAt)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for RecordChange: %w", err)
	}

	_, err = db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to record %s change for photo %d: %w", change.Field, change.PhotoID, err)
	}
	return nil
}

// ListChangesForPhoto returns the changes of one photo, newest first
func ListChangesForPhoto(ctx context.Context, db *sql.DB, photoID int) ([]Change, error) {
	queryBuilder := psql.Select("id", "photo_id", "user_id", "field", "old_value", "new_value", "changed_at").
		From("photo_changes").
		Where(sq.Eq{"photo_id": photoID}).
		OrderBy("seq DESC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListChangesForPhoto: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListChangesForPhoto query: %w", err)
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.ID, &c.PhotoID, &c.UserID, &c.Field, &c.OldValue, &c.NewValue, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change row: %w", err)
		}
		changes = append(changes, c)
	}

	if err = rows.Err(); err != nil {
		return changes, fmt.Errorf("error iterating change rows: %w", err)
	}
	return changes, nil
}

// ChangeLog binds the change functions to one database handle.
type ChangeLog struct {
	DB *sql.DB
}

// OpenChangeLog opens (and creates if needed) the change log database.
func OpenChangeLog(dataSourceName string) (*ChangeLog, error) {
	db, err := InitDB(dataSourceName)
	if err != nil {
		return nil, err
	}
	return &ChangeLog{DB: db}, nil
}

func (l *ChangeLog) Record(ctx context.Context, change Change) error {
	return RecordChange(ctx, l.DB, change)
}

func (l *ChangeLog) ListForPhoto(ctx context.Context, photoID int) ([]Change, error) {
	return ListChangesForPhoto(ctx, l.DB, photoID)
}

func (l *ChangeLog) Close() error {
	return l.DB.Close()
}
