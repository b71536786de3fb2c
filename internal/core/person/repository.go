package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baseplate/persons/internal/core/identity"
	"github.com/baseplate/persons/internal/core/search"
	"github.com/baseplate/persons/internal/storage/postgres"
)

// SearchParams filter on a case-insensitive fragment of the name.
type SearchParams = search.Params[string]

type SearchResult = search.Result[*Person]

// Repository persists persons. FindByID returns nil, nil when nothing matches.
type Repository interface {
	Insert(ctx context.Context, p *Person) error
	Update(ctx context.Context, p *Person) error
	FindByID(ctx context.Context, id identity.ID) (*Person, error)
	Delete(ctx context.Context, id identity.ID) error
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
}

// sortColumns whitelists the fields a search may be ordered by.
var sortColumns = map[string]string{
	FieldName:      "name",
	FieldType:      "person_type",
	FieldCreatedAt: "created_at",
	FieldUpdatedAt: "updated_at",
}

const defaultOrder = "created_at DESC"

type PostgresRepository struct {
	db *postgres.Client
}

func NewPostgresRepository(db *postgres.Client) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, p *Person) error {
	query := `
		INSERT INTO persons (person_id, name, person_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.DB.ExecContext(ctx, query,
		p.ID().Value(), p.Name(), string(p.Type()), p.CreatedAt(), p.UpdatedAt(),
	)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, p *Person) error {
	query := `
		UPDATE persons
		SET name = $2, person_type = $3, updated_at = $4
		WHERE person_id = $1`

	res, err := r.db.DB.ExecContext(ctx, query, p.ID().Value(), p.Name(), string(p.Type()), p.UpdatedAt())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id identity.ID) (*Person, error) {
	query := `
		SELECT person_id, name, person_type, created_at, updated_at
		FROM persons
		WHERE person_id = $1`

	return r.scanPerson(r.db.DB.QueryRowContext(ctx, query, id.Value()))
}

func (r *PostgresRepository) Delete(ctx context.Context, id identity.ID) error {
	query := `DELETE FROM persons WHERE person_id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id.Value())
	return err
}

// searchTxOptions keeps the count and the page query on one snapshot.
var searchTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func (r *PostgresRepository) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	where := "TRUE"
	var args []any
	if filter, ok := params.Filter(); ok {
		where = "name ILIKE $1 ESCAPE '\\'"
		args = append(args, likePattern(filter))
	}

	tx, err := r.db.DB.BeginTx(ctx, searchTxOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to begin search: %w", err)
	}
	defer tx.Rollback()

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM persons WHERE %s", where)
	if err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	params = clampPage(params, total)

	query := fmt.Sprintf(`
		SELECT person_id, name, person_type, created_at, updated_at
		FROM persons
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, orderClause(params), len(args)+1, len(args)+2)
	args = append(args, params.PerPage(), params.Offset())

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	persons, err := r.scanPersons(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish search: %w", err)
	}

	return search.NewResult(search.ResultProps[*Person]{
		Items:       persons,
		Total:       total,
		CurrentPage: params.Page(),
		PerPage:     params.PerPage(),
	})
}

// orderClause falls back to the newest first when the sort field is not
// whitelisted. A stable tie-breaker keeps pages disjoint.
func orderClause(params SearchParams) string {
	column, ok := sortColumns[params.Sort()]
	if !ok {
		return defaultOrder + ", person_id"
	}

	dir := "ASC"
	if params.SortDir() == search.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, person_id", column, dir)
}

func likePattern(filter string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(filter)
	return "%" + escaped + "%"
}

// clampPage moves a request past the last page back onto it so the fetched
// items match the page the result reports.
func clampPage(params SearchParams, total int) SearchParams {
	lastPage := search.PageCount(total, params.PerPage())
	if params.Page() > lastPage {
		return params.With(search.Props[string]{Page: lastPage})
	}
	return params
}

func scan(rw interface{ Scan(dest ...any) error }) (*Person, error) {
	var (
		rawID      string
		name       string
		personType string
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := rw.Scan(&rawID, &name, &personType, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := identity.Create(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored person has an invalid id: %w", err)
	}

	return New(Props{
		ID:        id,
		Name:      name,
		Type:      Type(personType),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}), nil
}

func (r *PostgresRepository) scanPerson(rw *sql.Row) (*Person, error) {
	p, err := scan(rw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PostgresRepository) scanPersons(rows *sql.Rows) ([]*Person, error) {
	var persons []*Person
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}
