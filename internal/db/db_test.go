package db

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"canvass/internal/model"
)

const memoryDSN = "file::memory:?_foreign_keys=on"

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestMigrate_CreatesTables(t *testing.T) {
	gormDB, err := Open("sqlite", memoryDSN)
	require.NoError(t, err)
	defer Close(gormDB)

	require.NoError(t, Migrate(gormDB, false))
	assert.True(t, gormDB.Migrator().HasTable(&model.Identity{}))
	assert.True(t, gormDB.Migrator().HasTable(&model.Record{}))

	// reset drops and recreates
	require.NoError(t, Migrate(gormDB, true))
	assert.True(t, gormDB.Migrator().HasTable(&model.Record{}))
}

func TestMigrate_UniqueEmailIsDuplicateKey(t *testing.T) {
	gormDB, err := Open("sqlite", memoryDSN)
	require.NoError(t, err)
	defer Close(gormDB)
	require.NoError(t, Migrate(gormDB, false))

	first := &model.Identity{Email: "a@x.com", PasswordHash: "h", FirstName: "Al", LastName: "Ex"}
	require.NoError(t, gormDB.Create(first).Error)

	second := &model.Identity{Email: "a@x.com", PasswordHash: "h", FirstName: "Al", LastName: "Ex"}
	err = gormDB.Create(second).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "mysql 1062", err: fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062}), want: true},
		{name: "mysql other", err: &mysqldriver.MySQLError{Number: 1213}, want: false},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: true},
		{name: "sqlite fk", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateKey(tt.err))
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrForeignKeyViolated, want: true},
		{name: "mysql 1452", err: fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1452}), want: true},
		{name: "mysql duplicate", err: &mysqldriver.MySQLError{Number: 1062}, want: false},
		{name: "sqlite fk", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, want: true},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsForeignKeyViolation(tt.err))
		})
	}
}

func TestIdentityTableOptions(t *testing.T) {
	assert.Equal(t, "DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin", identityTableOptions("mysql"))
	assert.Empty(t, identityTableOptions("sqlite"))
}

func TestMigrate_EmailUniquenessIsCaseSensitive(t *testing.T) {
	gormDB, err := Open("sqlite", memoryDSN)
	require.NoError(t, err)
	defer Close(gormDB)
	require.NoError(t, Migrate(gormDB, false))

	require.NoError(t, gormDB.Create(&model.Identity{Email: "case@x.com", PasswordHash: "h", FirstName: "Ca", LastName: "Se"}).Error)
	require.NoError(t, gormDB.Create(&model.Identity{Email: "Case@x.com", PasswordHash: "h", FirstName: "Ca", LastName: "Se"}).Error)

	var n int64
	require.NoError(t, gormDB.Model(&model.Identity{}).Where("email = ?", "CASE@x.com").Count(&n).Error)
	assert.Zero(t, n)
}
