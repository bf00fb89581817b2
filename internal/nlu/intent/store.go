package intent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	stderrors "agentic-nlu/internal/common/errors"
	"agentic-nlu/internal/models"
)

// Store persists intent definitions in the intent_definitions table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const listQuery = `
SELECT id, name, description, examples, slots, created_at, updated_at
FROM intent_definitions
ORDER BY name ASC`

// List returns all definitions ordered by name. Pattern insertion order is
// a behavioral contract for the matcher, so the ordering here matters.
func (s *Store) List(ctx context.Context) ([]models.IntentDefinition, error) {
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("list intents: %w", err)
	}
	defer rows.Close()

	var defs []models.IntentDefinition
	for rows.Next() {
		def, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

// Get fetches one definition by unique name.
func (s *Store) Get(ctx context.Context, name string) (*models.IntentDefinition, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, description, examples, slots, created_at, updated_at
FROM intent_definitions WHERE name = $1`, name)

	def, err := scanIntent(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewIntentNotFoundError(name)
	}
	return def, err
}

// Create inserts a new definition; duplicate names are rejected.
func (s *Store) Create(ctx context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error) {
	slots, err := marshalSlots(def.Slots)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO intent_definitions (name, description, examples, slots, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING id, name, description, examples, slots, created_at, updated_at`,
		def.Name, def.Description, pq.Array(def.Examples), slots)

	created, err := scanIntent(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, stderrors.NewDuplicateIntentError(def.Name)
		}
		return nil, fmt.Errorf("create intent: %w", err)
	}
	return created, nil
}

// Update replaces an existing definition by name.
func (s *Store) Update(ctx context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error) {
	slots, err := marshalSlots(def.Slots)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
UPDATE intent_definitions
SET description = $2, examples = $3, slots = $4, updated_at = NOW()
WHERE name = $1
RETURNING id, name, description, examples, slots, created_at, updated_at`,
		def.Name, def.Description, pq.Array(def.Examples), slots)

	updated, err := scanIntent(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewIntentNotFoundError(def.Name)
	}
	return updated, err
}

// Upsert inserts or replaces a definition by name.
func (s *Store) Upsert(ctx context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error) {
	slots, err := marshalSlots(def.Slots)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
INSERT INTO intent_definitions (name, description, examples, slots, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (name) DO UPDATE
SET description = EXCLUDED.description, examples = EXCLUDED.examples,
    slots = EXCLUDED.slots, updated_at = NOW()
RETURNING id, name, description, examples, slots, created_at, updated_at`,
		def.Name, def.Description, pq.Array(def.Examples), slots)

	return scanIntent(row)
}

// Delete removes a definition by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM intent_definitions WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete intent: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return stderrors.NewIntentNotFoundError(name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIntent(row rowScanner) (*models.IntentDefinition, error) {
	var def models.IntentDefinition
	var examples pq.StringArray
	var slots []byte

	err := row.Scan(&def.ID, &def.Name, &def.Description, &examples, &slots, &def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		return nil, err
	}
	def.Examples = []string(examples)
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &def.Slots); err != nil {
			return nil, fmt.Errorf("decode slots: %w", err)
		}
	}
	return &def, nil
}

func marshalSlots(slots map[string]string) ([]byte, error) {
	if slots == nil {
		return []byte("{}"), nil
	}
	out, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("encode slots: %w", err)
	}
	return out, nil
}
