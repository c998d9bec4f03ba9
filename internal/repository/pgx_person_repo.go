package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/avaldez/poketeams/internal/db"
)

// Person is the optional profile record created alongside a user. Its
// insert is best-effort: registration succeeds even when this row does not.
type Person struct {
	UserID     int64   `db:"user_id"`
	Address    *string `db:"address"`
	Phone      *string `db:"phone"`
	DocumentID *string `db:"document_id"`
	Gender     string  `db:"gender"`
}

type PersonRepository interface {
	Create(ctx context.Context, person *Person) error
	GetByUser(ctx context.Context, userID int64) (*Person, error)
}

type pgxPersonRepository struct {
	pool *pgxpool.Pool
}

func NewPgxPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &pgxPersonRepository{pool: pool}
}

func (p *pgxPersonRepository) Create(ctx context.Context, person *Person) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("person", "user_id", "address", "phone", "document_id", "gender"),
		im.Values(
			psql.Arg(person.UserID),
			psql.Arg(person.Address),
			psql.Arg(person.Phone),
			psql.Arg(person.DocumentID),
			psql.Arg(person.Gender),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return nil
}

func (p *pgxPersonRepository) GetByUser(ctx context.Context, userID int64) (*Person, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("user_id", "address", "phone", "document_id", "gender"),
		sm.From("person"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	person := &Person{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&person.UserID,
		&person.Address,
		&person.Phone,
		&person.DocumentID,
		&person.Gender,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return person, nil
}
