// Package db opens the relational store used by the record repositories.
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Connect opens driver with dsn. Tables are qualified with schema on
// postgres and mysql, where Migrate creates it as a schema or a database
// respectively. sqlite ignores it and always enforces foreign keys.
func Connect(driver, dsn, schema string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = gormsqlite.Open(sqliteDSN(dsn))
		schema = ""
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}
	return Open(dialector, schema, log)
}

// Open wraps an existing dialector. Tests use it with sqlmock connections.
func Open(dialector gorm.Dialector, schema string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: store.Naming(schema),
		Logger: gormlogger.New(zapWriter{log.Sugar()}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return gdb, nil
}

// Migrate creates the schema and the store tables.
func Migrate(gdb *gorm.DB, schema string) error {
	if stmt := createSchemaSQL(gdb.Dialector.Name(), schema); stmt != "" {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", strings.TrimSpace(schema), err)
		}
	}
	if err := gdb.AutoMigrate(store.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// createSchemaSQL returns the statement that creates schema on dialect, or
// "" when there is nothing to create. A mysql schema is a database.
func createSchemaSQL(dialect, schema string) string {
	s := strings.TrimSpace(schema)
	if s == "" {
		return ""
	}
	switch dialect {
	case DriverPostgres:
		return `CREATE SCHEMA IF NOT EXISTS "` + strings.ReplaceAll(s, `"`, `""`) + `"`
	case DriverMySQL:
		return "CREATE DATABASE IF NOT EXISTS `" + strings.ReplaceAll(s, "`", "``") + "`"
	}
	return ""
}

// sqliteDSN turns on foreign key enforcement unless dsn already sets it.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type zapWriter struct {
	s *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...any) {
	w.s.Warnf(format, args...)
}
