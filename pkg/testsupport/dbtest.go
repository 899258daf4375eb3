package testsupport

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewNamedSQLiteMemoryDB opens an isolated in-memory database so tests in
// one package do not share tables.
func NewNamedSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

// NewBunSQLite wraps an isolated memory database with the sqlite dialect and
// creates tables for models.
func NewBunSQLite(ctx context.Context, name string, models ...any) (*bun.DB, error) {
	sqlDB, err := NewNamedSQLiteMemoryDB(name)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return db, nil
}
