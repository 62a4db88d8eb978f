package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lineage/internal/person/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
)

// Postgres persists persons in PostgreSQL.
//
// Relationships reference persons with ON DELETE CASCADE, so deleting a
// person removes its relationships in the same statement.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const personColumns = `
	id, owner_id, first_name, last_name, birth_name, nickname,
	birth_date, death_date, gender, photo_ref, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.UUID(person.ID), uuid.UUID(person.OwnerID),
		person.FirstName, person.LastName, person.BirthName, person.Nickname,
		person.BirthDate, person.DeathDate, string(person.Gender), person.PhotoRef,
		person.CreatedAt, person.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("person %s: %w", person.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *Postgres) FindByOwnerAndID(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE owner_id = $1 AND id = $2`
	row := s.pool.QueryRow(ctx, query, uuid.UUID(ownerID), uuid.UUID(personID))
	person, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("person not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find person: %w", err)
	}
	return person, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE owner_id = $1 ORDER BY created_at, id`
	rows, err := s.pool.Query(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, person)
	}
	return persons, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, person *models.Person) error {
	query := `
		UPDATE persons SET
			first_name = $3, last_name = $4, birth_name = $5, nickname = $6,
			birth_date = $7, death_date = $8, gender = $9, photo_ref = $10,
			updated_at = $11
		WHERE owner_id = $1 AND id = $2
	`
	tag, err := s.pool.Exec(ctx, query,
		uuid.UUID(person.OwnerID), uuid.UUID(person.ID),
		person.FirstName, person.LastName, person.BirthName, person.Nickname,
		person.BirthDate, person.DeathDate, string(person.Gender), person.PhotoRef,
		person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("person not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, ownerID id.UserID, personID id.PersonID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM persons WHERE owner_id = $1 AND id = $2`,
		uuid.UUID(ownerID), uuid.UUID(personID))
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("person not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) CountByOwner(ctx context.Context, ownerID id.UserID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM persons WHERE owner_id = $1`,
		uuid.UUID(ownerID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return count, nil
}

func scanPerson(row pgx.Row) (*models.Person, error) {
	var (
		p                personUUIDs
		person           models.Person
		gender, photoRef string
	)
	err := row.Scan(
		&p.id, &p.ownerID,
		&person.FirstName, &person.LastName, &person.BirthName, &person.Nickname,
		&person.BirthDate, &person.DeathDate, &gender, &photoRef,
		&person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	person.ID = id.PersonID(p.id)
	person.OwnerID = id.UserID(p.ownerID)
	person.Gender = models.Gender(gender)
	person.PhotoRef = photoRef
	return &person, nil
}

type personUUIDs struct {
	id      uuid.UUID
	ownerID uuid.UUID
}
