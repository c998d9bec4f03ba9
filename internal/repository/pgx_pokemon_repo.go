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

type Pokemon struct {
	ID          int64          `db:"id"`
	TeamID      int64          `db:"team_id"`
	PokemonID   int            `db:"pokemon_id"`
	PokemonName string         `db:"pokemon_name"`
	Nickname    *string        `db:"nickname"`
	Level       int            `db:"level"`
	Position    int            `db:"position"`
	Ability     *string        `db:"ability"`
	Nature      *string        `db:"nature"`
	HeldItem    *string        `db:"held_item"`
	Moves       []string       `db:"moves"`
	Stats       map[string]int `db:"stats"`
	SpriteURL   *string        `db:"sprite_url"`
	CreatedAt   time.Time      `db:"created_at"`
}

type PokemonPatch struct {
	ID       int64 `db:"id"`
	TeamID   int64 `db:"team_id"`
	Nickname *string
	Level    *int
	Position *int
	Ability  *string
	Nature   *string
	HeldItem *string
	Moves    []string
	Stats    map[string]int
}

// PokemonRepository persists roster entries, scoped to the owning team.
type PokemonRepository interface {
	Create(ctx context.Context, pokemon *Pokemon) (*Pokemon, error)
	Get(ctx context.Context, teamID, pokemonID int64) (*Pokemon, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*Pokemon, error)
	CountByTeam(ctx context.Context, teamID int64) (int, error)
	MaxPosition(ctx context.Context, teamID int64) (int, error)
	GetByPosition(ctx context.Context, teamID int64, position int) (*Pokemon, error)
	Patch(ctx context.Context, patch *PokemonPatch) (*Pokemon, error)
	Delete(ctx context.Context, teamID, pokemonID int64) error
	SetPosition(ctx context.Context, pokemonID int64, position int) error
}

type pgxPokemonRepository struct {
	pool *pgxpool.Pool
}

func NewPgxPokemonRepository(pool *pgxpool.Pool) PokemonRepository {
	return &pgxPokemonRepository{pool: pool}
}

var pokemonColumns = []string{
	"id", "team_id", "pokemon_id", "pokemon_name", "nickname", "level",
	"position", "ability", "nature", "held_item", "moves", "stats",
	"sprite_url", "created_at",
}

func scanPokemon(row pgx.Row) (*Pokemon, error) {
	p := &Pokemon{}
	err := row.Scan(
		&p.ID,
		&p.TeamID,
		&p.PokemonID,
		&p.PokemonName,
		&p.Nickname,
		&p.Level,
		&p.Position,
		&p.Ability,
		&p.Nature,
		&p.HeldItem,
		&p.Moves,
		&p.Stats,
		&p.SpriteURL,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pgxPokemonRepository) Create(ctx context.Context, pokemon *Pokemon) (*Pokemon, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("team_pokemon",
			"team_id", "pokemon_id", "pokemon_name", "nickname", "level",
			"position", "ability", "nature", "held_item", "moves", "stats",
			"sprite_url",
		),
		im.Values(
			psql.Arg(pokemon.TeamID),
			psql.Arg(pokemon.PokemonID),
			psql.Arg(pokemon.PokemonName),
			psql.Arg(pokemon.Nickname),
			psql.Arg(pokemon.Level),
			psql.Arg(pokemon.Position),
			psql.Arg(pokemon.Ability),
			psql.Arg(pokemon.Nature),
			psql.Arg(pokemon.HeldItem),
			psql.Arg(pokemon.Moves),
			psql.Arg(pokemon.Stats),
			psql.Arg(pokemon.SpriteURL),
		),
		im.Returning(pokemonColumnList()...),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	return scanPokemon(e.QueryRow(ctx, sql, args...))
}

func (p *pgxPokemonRepository) Get(ctx context.Context, teamID, pokemonID int64) (*Pokemon, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(pokemonColumnList()...),
		sm.From("team_pokemon"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(pokemonID)).And(psql.Quote("team_id").EQ(psql.Arg(teamID)))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	pokemon, err := scanPokemon(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return pokemon, err
}

func (p *pgxPokemonRepository) ListByTeam(ctx context.Context, teamID int64) ([]*Pokemon, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(pokemonColumnList()...),
		sm.From("team_pokemon"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("position").Asc(),
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

	pokemon, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Pokemon, error) {
		return scanPokemon(row)
	})
	if err != nil {
		return nil, err
	}

	return pokemon, nil
}

func (p *pgxPokemonRepository) CountByTeam(ctx context.Context, teamID int64) (int, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("count(*)"),
		sm.From("team_pokemon"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
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

// MaxPosition returns the highest occupied position, or 0 for an empty roster.
func (p *pgxPokemonRepository) MaxPosition(ctx context.Context, teamID int64) (int, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("coalesce(max(position), 0)"),
		sm.From("team_pokemon"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var maxPosition int
	if err = e.QueryRow(ctx, sql, args...).Scan(&maxPosition); err != nil {
		return 0, err
	}
	return maxPosition, nil
}

func (p *pgxPokemonRepository) GetByPosition(ctx context.Context, teamID int64, position int) (*Pokemon, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(pokemonColumnList()...),
		sm.From("team_pokemon"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID)).And(psql.Quote("position").EQ(psql.Arg(position)))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	pokemon, err := scanPokemon(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return pokemon, err
}

func (p *pgxPokemonRepository) Patch(ctx context.Context, patch *PokemonPatch) (*Pokemon, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 8)

	if patch.Nickname != nil {
		sets = append(sets, um.SetCol("nickname").ToArg(*patch.Nickname))
	}
	if patch.Level != nil {
		sets = append(sets, um.SetCol("level").ToArg(*patch.Level))
	}
	if patch.Position != nil {
		sets = append(sets, um.SetCol("position").ToArg(*patch.Position))
	}
	if patch.Ability != nil {
		sets = append(sets, um.SetCol("ability").ToArg(*patch.Ability))
	}
	if patch.Nature != nil {
		sets = append(sets, um.SetCol("nature").ToArg(*patch.Nature))
	}
	if patch.HeldItem != nil {
		sets = append(sets, um.SetCol("held_item").ToArg(*patch.HeldItem))
	}
	if patch.Moves != nil {
		sets = append(sets, um.SetCol("moves").ToArg(patch.Moves))
	}
	if patch.Stats != nil {
		sets = append(sets, um.SetCol("stats").ToArg(patch.Stats))
	}

	q := psql.Update(
		um.Table("team_pokemon"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID)).And(psql.Quote("team_id").EQ(psql.Arg(patch.TeamID)))),
		um.Returning(pokemonColumnList()...),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	pokemon, err := scanPokemon(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return pokemon, err
}

func (p *pgxPokemonRepository) Delete(ctx context.Context, teamID, pokemonID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("team_pokemon"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(pokemonID)).And(psql.Quote("team_id").EQ(psql.Arg(teamID)))),
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

func (p *pgxPokemonRepository) SetPosition(ctx context.Context, pokemonID int64, position int) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("team_pokemon"),
		um.SetCol("position").ToArg(position),
		um.Where(psql.Quote("id").EQ(psql.Arg(pokemonID))),
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

func pokemonColumnList() []any {
	cols := make([]any, 0, len(pokemonColumns))
	for _, c := range pokemonColumns {
		cols = append(cols, c)
	}
	return cols
}
