// Package contact validates and persists contact-form submissions.
package contact

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"statusrelay/pkg/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages contact submissions in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new contact store with the given database path.
func NewStore(dbPath string) (*Store, error) {
	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	ctx := context.Background()

	// Enable WAL mode for better concurrency
	if _, err := database.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	store := &Store{db: database}
	if err := store.Initialize(); err != nil {
		_ = database.Close()
		return nil, err
	}

	return store, nil
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(context.Background(), Schema)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Validate checks that a submission carries usable name, email and message fields.
func Validate(name, email, message string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	case len(name) > maxNameBytes:
		return fmt.Errorf("%w: name is too long", ErrInvalidSubmission)
	case email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidSubmission)
	case len(email) > maxEmailBytes || !strings.Contains(email, "@"):
		return fmt.Errorf("%w: email is malformed", ErrInvalidSubmission)
	case message == "":
		return fmt.Errorf("%w: message is required", ErrInvalidSubmission)
	case len(message) > maxMessageBytes:
		return fmt.Errorf("%w: message exceeds %d bytes", ErrInvalidSubmission, maxMessageBytes)
	}
	return nil
}

// Create validates and stores a new submission, assigning it a fresh ID.
func (s *Store) Create(name, email, message string) (*models.ContactSubmission, error) {
	if err := Validate(name, email, message); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	submission := &models.ContactSubmission{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Message:   strings.TrimSpace(message),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO submissions (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		submission.ID, submission.Name, submission.Email, submission.Message, submission.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return submission, nil
}

// List returns stored submissions newest first, capped at limit.
func (s *Store) List(limit int) ([]models.ContactSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, name, email, message, created_at FROM submissions ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	submissions := make([]models.ContactSubmission, 0, limit)
	for rows.Next() {
		var sub models.ContactSubmission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Message, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
		}
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	return submissions, nil
}

// Count returns the total number of stored submissions.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM submissions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return count, nil
}
