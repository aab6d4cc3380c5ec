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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProfiles_RegistersConnections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "connections.yaml")
	content := `
connections:
  orders:
    type: mysql
    host: db.internal
    port: 3307
    username: svc
    dbname: orders
  reports:
    type: postgres
    host: 10.0.0.9
    port: 5432
    dbname: reports
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}
	if err := LoadProfiles(path); err != nil {
		t.Fatalf("load profiles: %v", err)
	}

	cfg, err := Resolve("orders")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Type != "mysql" || cfg.Host != "db.internal" || cfg.Port != 3307 || cfg.DBName != "orders" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ConnectTimeout != time.Second*10 {
		t.Fatalf("defaults not applied: %v", cfg.ConnectTimeout)
	}

	if _, err := Resolve("reports"); err != nil {
		t.Fatalf("resolve reports: %v", err)
	}
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	if err := LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve_UnknownDescriptor(t *testing.T) {
	_, err := Resolve("never-registered")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestResolve_EnvOverridesAndIsolation(t *testing.T) {
	Register("env-test", &ConnectionConfig{Type: "mysql", Host: "original", Port: 3306})

	t.Setenv("DB_HOST", "overridden")
	t.Setenv("DB_PORT", "3310")

	cfg, err := Resolve("env-test")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Host != "overridden" || cfg.Port != 3310 {
		t.Fatalf("env override not applied: %+v", cfg)
	}

	// Mutating the resolved copy must not leak into the registry.
	cfg.Host = "mutated"
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	again, err := Resolve("env-test")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if again.Host != "original" {
		t.Fatalf("registry entry mutated: %+v", again)
	}
}

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()
	if cfg.MaxOpenConns <= 0 || cfg.ConnectTimeout <= 0 || cfg.SlowQueryTime <= 0 {
		t.Fatalf("defaults incomplete: %+v", cfg)
	}
}
