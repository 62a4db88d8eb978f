package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
)

// Postgres persists relationships in PostgreSQL.
//
// The schema backstops the validator's read-then-write sequence against
// concurrent writers:
//
//	CREATE UNIQUE INDEX relationships_parent_role_uq
//	    ON relationships (owner_id, endpoint2, role)
//	    WHERE kinship_type = 'parentOf';
//	CREATE UNIQUE INDEX relationships_pair_uq
//	    ON relationships (owner_id, kinship_type,
//	                      least(endpoint1, endpoint2), greatest(endpoint1, endpoint2));
//
// Two racing requests can both pass validation, but only one insert
// commits; the loser surfaces as sentinel.ErrConflict.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const relColumns = `id, owner_id, endpoint1, endpoint2, kinship_type, role, created_at`

func (s *Postgres) Create(ctx context.Context, rel *models.Relationship) error {
	query := `
		INSERT INTO relationships (` + relColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.UUID(rel.ID), uuid.UUID(rel.OwnerID),
		uuid.UUID(rel.Endpoint1), uuid.UUID(rel.Endpoint2),
		string(rel.Kinship.Type), string(rel.Kinship.Role), rel.CreatedAt,
	)
	if err != nil {
		return translateWriteErr(err, "create relationship")
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, rel *models.Relationship) error {
	query := `
		UPDATE relationships SET
			endpoint1 = $3, endpoint2 = $4, kinship_type = $5, role = $6
		WHERE owner_id = $1 AND id = $2
	`
	tag, err := s.pool.Exec(ctx, query,
		uuid.UUID(rel.OwnerID), uuid.UUID(rel.ID),
		uuid.UUID(rel.Endpoint1), uuid.UUID(rel.Endpoint2),
		string(rel.Kinship.Type), string(rel.Kinship.Role),
	)
	if err != nil {
		return translateWriteErr(err, "update relationship")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("relationship not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func translateWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation: parent-role or pair index
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		case "23503": // foreign_key_violation: endpoint person vanished
			return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Postgres) FindByOwnerAndID(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) (*models.Relationship, error) {
	query := `SELECT ` + relColumns + ` FROM relationships WHERE owner_id = $1 AND id = $2`
	row := s.pool.QueryRow(ctx, query, uuid.UUID(ownerID), uuid.UUID(relID))
	rel, err := scanRelationship(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("relationship not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find relationship: %w", err)
	}
	return rel, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Relationship, error) {
	query := `SELECT ` + relColumns + ` FROM relationships WHERE owner_id = $1 ORDER BY created_at, id`
	return s.queryMany(ctx, query, uuid.UUID(ownerID))
}

// ListByPerson returns every relationship with personID as either endpoint.
func (s *Postgres) ListByPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) ([]*models.Relationship, error) {
	query := `
		SELECT ` + relColumns + ` FROM relationships
		WHERE owner_id = $1 AND (endpoint1 = $2 OR endpoint2 = $2)
		ORDER BY created_at, id
	`
	return s.queryMany(ctx, query, uuid.UUID(ownerID), uuid.UUID(personID))
}

func (s *Postgres) Delete(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM relationships WHERE owner_id = $1 AND id = $2`,
		uuid.UUID(ownerID), uuid.UUID(relID))
	if err != nil {
		return fmt.Errorf("delete relationship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("relationship not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteByPerson removes every relationship touching personID. The FK
// cascade on persons already covers person deletion; this exists for the
// memory-store parity path and for explicit cleanup.
func (s *Postgres) DeleteByPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM relationships WHERE owner_id = $1 AND (endpoint1 = $2 OR endpoint2 = $2)`,
		uuid.UUID(ownerID), uuid.UUID(personID))
	if err != nil {
		return fmt.Errorf("delete relationships by person: %w", err)
	}
	return nil
}

func (s *Postgres) queryMany(ctx context.Context, query string, args ...any) ([]*models.Relationship, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var rels []*models.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

func scanRelationship(row pgx.Row) (*models.Relationship, error) {
	var (
		relID, ownerID, e1, e2 uuid.UUID
		kinshipType, role      string
		rel                    models.Relationship
	)
	err := row.Scan(&relID, &ownerID, &e1, &e2, &kinshipType, &role, &rel.CreatedAt)
	if err != nil {
		return nil, err
	}
	rel.ID = id.RelationshipID(relID)
	rel.OwnerID = id.UserID(ownerID)
	rel.Endpoint1 = id.PersonID(e1)
	rel.Endpoint2 = id.PersonID(e2)
	rel.Kinship = models.Kinship{Type: models.KinshipType(kinshipType), Role: models.Role(role)}
	return &rel, nil
}
