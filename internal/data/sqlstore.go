package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // register the postgres dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // register the sqlite3 dialect
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// Dialect names accepted by NewSQLBookStoreFromSQLDB.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

const (
	defaultBookTableName = "books"

	colID     = "id"
	colTitle  = "title"
	colAuthor = "author"
)

// createTableStmt is valid for both PostgreSQL and SQLite.
const createTableStmt = `
CREATE TABLE IF NOT EXISTS %s (
	id     TEXT PRIMARY KEY,
	title  TEXT NOT NULL,
	author TEXT NOT NULL
)`

// SQLBookStore keeps books in a relational table. Statements are rendered
// with goqu for the configured dialect and run through a dbAdapter, so the
// same code serves PostgreSQL (lib/pq, sqlx, pgx) and SQLite.
type SQLBookStore struct {
	db        dbAdapter
	dialect   goqu.DialectWrapper
	tableName string
}

// NewSQLBookStoreFromSQLDB builds a store over a database/sql pool using
// the given goqu dialect (DialectPostgres or DialectSQLite).
func NewSQLBookStoreFromSQLDB(db *sql.DB, dialect string) (*SQLBookStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newSQLBookStore(&sqlAdapter{db: db}, dialect), nil
}

// NewSQLBookStoreFromSQLX builds a PostgreSQL store over a sqlx pool.
func NewSQLBookStoreFromSQLX(db *sqlx.DB) (*SQLBookStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newSQLBookStore(&sqlxAdapter{db: db}, DialectPostgres), nil
}

// NewSQLBookStoreFromPGXPool builds a PostgreSQL store over a pgx pool.
func NewSQLBookStoreFromPGXPool(pool *pgxpool.Pool) (*SQLBookStore, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newSQLBookStore(&pgxAdapter{pool: pool}, DialectPostgres), nil
}

func newSQLBookStore(db dbAdapter, dialect string) *SQLBookStore {
	return &SQLBookStore{
		db:        db,
		dialect:   goqu.Dialect(dialect),
		tableName: defaultBookTableName,
	}
}

// Migrate creates the books table if it does not exist yet.
func (s *SQLBookStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(createTableStmt, s.tableName))
	if err != nil {
		return fmt.Errorf("migrate %s: %w", s.tableName, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLBookStore) Close() error {
	return s.db.Close()
}

// FindAll returns every row of the books table. No ordering is imposed.
func (s *SQLBookStore) FindAll(ctx context.Context) ([]*Book, error) {
	query, _, err := s.dialect.
		From(s.tableName).
		Select(colID, colTitle, colAuthor).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return s.queryBooks(ctx, query)
}

// FindByID returns the book with the given id, or ErrRecordNotFound.
func (s *SQLBookStore) FindByID(ctx context.Context, id string) (*Book, error) {
	query, _, err := s.dialect.
		From(s.tableName).
		Select(colID, colTitle, colAuthor).
		Where(goqu.C(colID).Eq(id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	books, err := s.queryBooks(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrRecordNotFound
	}
	return books[0], nil
}

// Create inserts book under a freshly generated id, written back into book.
func (s *SQLBookStore) Create(ctx context.Context, book *Book) error {
	id := NewID()

	query, _, err := s.dialect.
		Insert(s.tableName).
		Rows(goqu.Record{colID: id, colTitle: book.Title, colAuthor: book.Author}).
		ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}

	if _, err := s.db.Exec(ctx, query); err != nil {
		return err
	}

	book.ID = id
	return nil
}

// UpdateByID sets the provided columns and reads the row back.
func (s *SQLBookStore) UpdateByID(ctx context.Context, id string, input UpdateBookInput) (*Book, error) {
	if input.Empty() {
		return s.FindByID(ctx, id)
	}

	record := goqu.Record{}
	if input.Title != nil {
		record[colTitle] = *input.Title
	}
	if input.Author != nil {
		record[colAuthor] = *input.Author
	}

	query, _, err := s.dialect.
		Update(s.tableName).
		Set(record).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	if err := s.execAffectingOne(ctx, query); err != nil {
		return nil, err
	}

	return s.FindByID(ctx, id)
}

// DeleteByID reads the row, deletes it and returns what was read.
func (s *SQLBookStore) DeleteByID(ctx context.Context, id string) (*Book, error) {
	book, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query, _, err := s.dialect.
		Delete(s.tableName).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	if err := s.execAffectingOne(ctx, query); err != nil {
		return nil, err
	}

	return book, nil
}

func (s *SQLBookStore) queryBooks(ctx context.Context, query string) ([]*Book, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author); err != nil {
			return nil, err
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// execAffectingOne runs query and maps zero affected rows to ErrRecordNotFound.
func (s *SQLBookStore) execAffectingOne(ctx context.Context, query string) error {
	result, err := s.db.Exec(ctx, query)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
