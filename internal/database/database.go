package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"geisha-game/internal/game"
)

type Service struct {
	db         *sql.DB
	m          *sync.Mutex
	driver     string
	table_name string
}

const tableName = "matches"

const columns = "id, created_at, player1, player2, winner, reason, rounds, player1_favors, player2_favors, player1_points, player2_points"

// New opens the results store and creates the table if needed. driver is
// "sqlite3" or "pgx".
func New(driver, dsn string) (*Service, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite3" {
		// An in-memory sqlite database lives on a single connection.
		db.SetMaxOpenConns(1)
	}

	sqlStmt := `
	create table if not exists ` + tableName + ` (
		id text not null primary key,
		created_at text,
		player1 text,
		player2 text,
		winner text,
		reason text,
		rounds integer,
		player1_favors integer,
		player2_favors integer,
		player1_points integer,
		player2_points integer
	);
	`
	if _, err = db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s table: %w", tableName, err)
	}

	return &Service{
		db:         db,
		m:          &sync.Mutex{},
		driver:     driver,
		table_name: tableName,
	}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

// placeholders returns n bind parameters in the driver's syntax, starting at from.
func (s *Service) placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.driver == "pgx" {
			parts[i] = fmt.Sprintf("$%d", from+i)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

func (s *Service) GetAll() ([]MatchResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query("SELECT " + columns + " FROM " + s.table_name + " ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *Service) GetByID(id string) (MatchResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	row := s.db.QueryRow("SELECT "+columns+" FROM "+s.table_name+" WHERE id = "+s.placeholders(1, 1), id)
	var result MatchResult
	if err := scanResult(row, &result); err != nil {
		return MatchResult{}, err
	}
	return result, nil
}

func (s *Service) Insert(result MatchResult) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, err := s.db.Exec("INSERT INTO "+s.table_name+" ("+columns+") VALUES ("+s.placeholders(1, 11)+")",
		result.ID,
		result.CreatedAt,
		result.Player1,
		result.Player2,
		result.Winner,
		result.Reason,
		result.Rounds,
		result.Player1Favors,
		result.Player2Favors,
		result.Player1Points,
		result.Player2Points)
	return err
}

// Record stores the result of a concluded match.
func (s *Service) Record(r game.Result) error {
	if err := s.Insert(FromGame(r)); err != nil {
		return fmt.Errorf("record match %s: %w", r.MatchID, err)
	}
	return nil
}

// GetByPlayer returns every result the participant took part in, or
// sql.ErrNoRows when there are none.
func (s *Service) GetByPlayer(playerID string) ([]MatchResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	rows, err := s.db.Query("SELECT "+columns+" FROM "+s.table_name+
		" WHERE player1 = "+s.placeholders(1, 1)+" OR player2 = "+s.placeholders(2, 1)+" ORDER BY created_at",
		playerID,
		playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner, result *MatchResult) error {
	return row.Scan(
		&result.ID,
		&result.CreatedAt,
		&result.Player1,
		&result.Player2,
		&result.Winner,
		&result.Reason,
		&result.Rounds,
		&result.Player1Favors,
		&result.Player2Favors,
		&result.Player1Points,
		&result.Player2Points)
}

func scanResults(rows *sql.Rows) ([]MatchResult, error) {
	results := []MatchResult{}
	for rows.Next() {
		var result MatchResult
		if err := scanResult(rows, &result); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
