package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/avaldez/poketeams/internal/db"
)

type Team struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}

type TeamPatch struct {
	ID          int64   `db:"id"`
	UserID      int64   `db:"user_id"`
	Name        *string `db:"name"`
	Description *string `db:"description"`
	IsActive    *bool   `db:"is_active"`
}

// TeamRepository persists teams. Every query is scoped to the owning user,
// so a foreign team id behaves exactly like a missing one.
type TeamRepository interface {
	Create(ctx context.Context, team *Team) (*Team, error)
	Get(ctx context.Context, userID, teamID int64) (*Team, error)
	ListByUser(ctx context.Context, userID int64) ([]*Team, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Patch(ctx context.Context, patch *TeamPatch) (*Team, error)
	Delete(ctx context.Context, userID, teamID int64) error
	DeactivateAll(ctx context.Context, userID int64) error
	FirstByUser(ctx context.Context, userID int64) (*Team, error)
}

type pgxTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgxTeamRepository{pool: pool}
}

func (p *pgxTeamRepository) Create(ctx context.Context, team *Team) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("teams", "user_id", "name", "description", "is_active"),
		im.Values(psql.Arg(team.UserID), psql.Arg(team.Name), psql.Arg(team.Description), psql.Arg(team.IsActive)),
		im.Returning("id", "user_id", "name", "description", "is_active", "created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	created := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&created.ID,
		&created.UserID,
		&created.Name,
		&created.Description,
		&created.IsActive,
		&created.CreatedAt,
	); err != nil {
		return nil, err
	}

	return created, nil
}

func (p *pgxTeamRepository) Get(ctx context.Context, userID, teamID int64) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "user_id", "name", "description", "is_active", "created_at"),
		sm.From("teams"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(teamID)).And(psql.Quote("user_id").EQ(psql.Arg(userID)))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&team.ID,
		&team.UserID,
		&team.Name,
		&team.Description,
		&team.IsActive,
		&team.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

func (p *pgxTeamRepository) ListByUser(ctx context.Context, userID int64) ([]*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "user_id", "name", "description", "is_active", "created_at"),
		sm.From("teams"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.OrderBy("created_at").Desc(),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Team, error) {
		team := &Team{}
		if err = row.Scan(&team.ID, &team.UserID, &team.Name, &team.Description, &team.IsActive, &team.CreatedAt); err != nil {
			return nil, err
		}
		return team, nil
	})
	if err != nil {
		return nil, err
	}

	return teams, nil
}

func (p *pgxTeamRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("count(*)"),
		sm.From("teams"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err = e.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *pgxTeamRepository) Patch(ctx context.Context, patch *TeamPatch) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 3)

	if patch.Name != nil {
		sets = append(sets, um.SetCol("name").ToArg(*patch.Name))
	}
	if patch.Description != nil {
		sets = append(sets, um.SetCol("description").ToArg(*patch.Description))
	}
	if patch.IsActive != nil {
		sets = append(sets, um.SetCol("is_active").ToArg(*patch.IsActive))
	}

	q := psql.Update(
		um.Table("teams"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID)).And(psql.Quote("user_id").EQ(psql.Arg(patch.UserID)))),
		um.Returning("id", "user_id", "name", "description", "is_active", "created_at"),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&team.ID,
		&team.UserID,
		&team.Name,
		&team.Description,
		&team.IsActive,
		&team.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return team, nil
}

func (p *pgxTeamRepository) Delete(ctx context.Context, userID, teamID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("teams"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(teamID)).And(psql.Quote("user_id").EQ(psql.Arg(userID)))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *pgxTeamRepository) DeactivateAll(ctx context.Context, userID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("teams"),
		um.SetCol("is_active").ToArg(false),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
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

// FirstByUser returns the user's team with the lowest id. Used as the
// deterministic promotion pick after the active team is deleted.
func (p *pgxTeamRepository) FirstByUser(ctx context.Context, userID int64) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "user_id", "name", "description", "is_active", "created_at"),
		sm.From("teams"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.OrderBy("id").Asc(),
		sm.Limit(1),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&team.ID,
		&team.UserID,
		&team.Name,
		&team.Description,
		&team.IsActive,
		&team.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}
