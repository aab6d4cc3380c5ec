/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Opener builds a Bun database handle for a connection configuration.
// Additional engine types can be plugged in with RegisterOpener.
type Opener func(cfg *ConnectionConfig) (*bun.DB, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]Opener{
		"mysql":      openMySQL,
		"postgres":   openPostgreSQL,
		"postgresql": openPostgreSQL,
		"sqlite":     openSQLite,
		"sqlite3":    openSQLite,
	}
)

// RegisterOpener installs an opener for a database type, replacing any
// existing one with the same name.
func RegisterOpener(dbType string, opener Opener) {
	if dbType == "" || opener == nil {
		return
	}
	openersMu.Lock()
	openers[dbType] = opener
	openersMu.Unlock()
}

// Conn is a database connection scoped to a single procedure call. The
// caller that opens it is responsible for closing it on every exit path.
type Conn struct {
	descriptor string
	config     *ConnectionConfig
	db         *bun.DB
	logger     Logger
}

// Connect resolves a connection descriptor and opens a fresh connection.
func Connect(ctx context.Context, descriptor string) (*Conn, error) {
	cfg, err := Resolve(descriptor)
	if err != nil {
		return nil, err
	}
	return Open(ctx, descriptor, cfg)
}

// Open opens a fresh connection for a single call and verifies it with a
// ping bounded by the configured connect timeout. Failures are reported as
// ConnectionError; nothing is retried.
func Open(ctx context.Context, descriptor string, cfg *ConnectionConfig) (*Conn, error) {
	if cfg == nil {
		return nil, NewConnectionError(descriptor, fmt.Errorf("connection configuration cannot be empty"))
	}
	cfg = cfg.clone()
	cfg.fillDefaults()

	openersMu.RLock()
	opener, ok := openers[cfg.Type]
	openersMu.RUnlock()
	if !ok {
		return nil, NewConnectionError(descriptor, fmt.Errorf("unsupported database type: %s", cfg.Type))
	}

	db, err := opener(cfg)
	if err != nil {
		return nil, NewConnectionError(descriptor, err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
		db.AddQueryHook(NewCallTraceHook("PROCALL_TRACE", true, nil))
	}
	if cfg.SlowQueryTime > 0 {
		db.AddQueryHook(&slowCallHook{slowTime: cfg.SlowQueryTime, logger: GetLogger()})
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctxTimeout); err != nil {
		_ = db.Close()
		return nil, NewConnectionError(descriptor, err)
	}

	logger := GetLogger()
	logger.Debug("Database connection opened", "descriptor", descriptor, "type", cfg.Type)
	return &Conn{descriptor: descriptor, config: cfg, db: db, logger: logger}, nil
}

// DB returns the underlying Bun handle.
func (c *Conn) DB() *bun.DB { return c.db }

// Descriptor returns the connection descriptor the handle was opened for.
func (c *Conn) Descriptor() string { return c.descriptor }

// Dialect reports the SQL dialect of the open connection.
func (c *Conn) Dialect() dialect.Name { return c.db.Dialect().Name() }

// Close releases the connection. It is safe to call once per Open.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		c.logger.Error("Failed to close database connection", "descriptor", c.descriptor, "error", err)
	} else {
		c.logger.Debug("Database connection closed", "descriptor", c.descriptor)
	}
	return err
}

func openMySQL(cfg *ConnectionConfig) (*bun.DB, error) {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		charset,
		cfg.ConnectTimeout,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
	)
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, mysqldialect.New()), nil
}

func openPostgreSQL(cfg *ConnectionConfig) (*bun.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
		int(cfg.ConnectTimeout/time.Second),
	)
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

func openSQLite(cfg *ConnectionConfig) (*bun.DB, error) {
	dsn := fmt.Sprintf("%s.db", cfg.DBName)
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
