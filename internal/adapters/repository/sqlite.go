package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/pressly/goose/v3"

	"github.com/okian/golazo/internal/domain/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists the roster and history in a SQLite database.
// Players are ordered by name then insertion; matches by insertion.
type SQLiteStore struct {
	db    *sql.DB
	newID func() string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and applies pending migrations.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps ":memory:" coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, newID: newID}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying handle.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// FetchMatches implements Store.
func (s *SQLiteStore) FetchMatches(ctx context.Context) (_ []model.Match, err error) {
	defer func(start time.Time) { observe(opFetchMatches, start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, home_goals, away_goals FROM matches ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]model.Match, 0)
	byID := make(map[string]int)
	for rows.Next() {
		m := model.Match{HomePlayers: []model.Player{}, AwayPlayers: []model.Player{}}
		if err := rows.Scan(&m.ID, &m.HomeGoals, &m.AwayGoals); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		byID[m.ID] = len(matches)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}

	sideRows, err := s.db.QueryContext(ctx, `
		SELECT mp.match_id, mp.side, p.id, p.name
		FROM match_players mp
		JOIN players p ON p.id = mp.player_id
		ORDER BY mp.match_id, mp.side, mp.position`)
	if err != nil {
		return nil, fmt.Errorf("query match players: %w", err)
	}
	defer sideRows.Close()

	for sideRows.Next() {
		var matchID, side string
		var p model.Player
		if err := sideRows.Scan(&matchID, &side, &p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan match player: %w", err)
		}
		idx, ok := byID[matchID]
		if !ok {
			continue
		}
		if side == model.SideHome.String() {
			matches[idx].HomePlayers = append(matches[idx].HomePlayers, p)
		} else {
			matches[idx].AwayPlayers = append(matches[idx].AwayPlayers, p)
		}
	}
	if err := sideRows.Err(); err != nil {
		return nil, fmt.Errorf("query match players: %w", err)
	}
	return matches, nil
}

// CreateMatch implements Store.
func (s *SQLiteStore) CreateMatch(ctx context.Context, params model.MatchParameters) (_ model.Match, err error) {
	defer func(start time.Time) { observe(opCreateMatch, start, err) }(time.Now())

	var m model.Match
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if m, err = materializeTx(ctx, tx, s.newID(), params); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matches (id, home_goals, away_goals) VALUES (?, ?, ?)`,
			m.ID, m.HomeGoals, m.AwayGoals); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
		return insertSides(ctx, tx, m)
	})
	if err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// UpdateMatch implements Store.
func (s *SQLiteStore) UpdateMatch(ctx context.Context, id string, params model.MatchParameters) (_ model.Match, err error) {
	defer func(start time.Time) { observe(opUpdateMatch, start, err) }(time.Now())

	var m model.Match
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if m, err = materializeTx(ctx, tx, id, params); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE matches SET home_goals = ?, away_goals = ? WHERE id = ?`,
			m.HomeGoals, m.AwayGoals, id)
		if err != nil {
			return fmt.Errorf("update match: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update match: %w", err)
		} else if n == 0 {
			return fmt.Errorf("match %s: %w", id, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM match_players WHERE match_id = ?`, id); err != nil {
			return fmt.Errorf("clear match players: %w", err)
		}
		return insertSides(ctx, tx, m)
	})
	if err != nil {
		return model.Match{}, err
	}
	return m, nil
}

// DeleteMatch implements Store.
func (s *SQLiteStore) DeleteMatch(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(opDeleteMatch, start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return nil
}

// FetchPlayers implements Store.
func (s *SQLiteStore) FetchPlayers(ctx context.Context) (_ []model.Player, err error) {
	defer func(start time.Time) { observe(opFetchPlayers, start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM players ORDER BY name, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	players := make([]model.Player, 0)
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	return players, nil
}

// CreatePlayer implements Store.
func (s *SQLiteStore) CreatePlayer(ctx context.Context, name string) (_ model.Player, err error) {
	defer func(start time.Time) { observe(opCreatePlayer, start, err) }(time.Now())

	name, err = normalizeName(name)
	if err != nil {
		return model.Player{}, err
	}
	p := model.Player{ID: s.newID(), Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO players (id, name) VALUES (?, ?)`, p.ID, p.Name); err != nil {
		return model.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func materializeTx(ctx context.Context, tx *sql.Tx, id string, params model.MatchParameters) (model.Match, error) {
	if err := validateGoals(params); err != nil {
		return model.Match{}, err
	}
	lookup := func(playerID string) (model.Player, error) {
		p := model.Player{ID: playerID}
		err := tx.QueryRowContext(ctx, `SELECT name FROM players WHERE id = ?`, playerID).Scan(&p.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return model.Player{}, fmt.Errorf("player %s: %w", playerID, ErrUnknownPlayer)
		}
		if err != nil {
			return model.Player{}, fmt.Errorf("query player: %w", err)
		}
		return p, nil
	}
	home, err := resolveSide(params.HomePlayerIDs, lookup)
	if err != nil {
		return model.Match{}, err
	}
	away, err := resolveSide(params.AwayPlayerIDs, lookup)
	if err != nil {
		return model.Match{}, err
	}
	return model.Match{
		ID:          id,
		HomePlayers: home,
		AwayPlayers: away,
		HomeGoals:   params.HomeGoals,
		AwayGoals:   params.AwayGoals,
	}, nil
}

func insertSides(ctx context.Context, tx *sql.Tx, m model.Match) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO match_players (match_id, player_id, side, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare match players: %w", err)
	}
	defer stmt.Close()

	for side, players := range map[model.Side][]model.Player{
		model.SideHome: m.HomePlayers,
		model.SideAway: m.AwayPlayers,
	} {
		for pos, p := range players {
			if _, err := stmt.ExecContext(ctx, m.ID, p.ID, side.String(), pos); err != nil {
				return fmt.Errorf("insert match player: %w", err)
			}
		}
	}
	return nil
}
