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
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ProfileConfig is the YAML structure that maps connection descriptors to
// connection configurations:
//
//	connections:
//	  orders:
//	    type: mysql
//	    host: 127.0.0.1
//	    port: 3306
//	    dbname: orders
type ProfileConfig struct {
	Connections map[string]*ConnectionConfig `yaml:"connections"`
}

var (
	profilesMu sync.RWMutex
	profiles   = map[string]*ConnectionConfig{}
)

// Register binds a connection descriptor to a configuration. Registering the
// same descriptor again replaces the previous configuration.
func Register(descriptor string, cfg *ConnectionConfig) {
	if descriptor == "" || cfg == nil {
		return
	}
	profilesMu.Lock()
	profiles[descriptor] = cfg.clone()
	profilesMu.Unlock()
}

// LoadProfiles reads a YAML profile file and registers every connection it
// declares. Existing descriptors with the same names are replaced.
func LoadProfiles(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("profile file does not exist: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile file: %w", err)
	}
	var config ProfileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse profile file: %w", err)
	}
	for name, cfg := range config.Connections {
		Register(name, cfg)
	}
	return nil
}

// Resolve maps a connection descriptor to its configuration, applying
// environment overrides and defaults. Unknown descriptors fail with a
// ConnectionError.
func Resolve(descriptor string) (*ConnectionConfig, error) {
	profilesMu.RLock()
	cfg, ok := profiles[descriptor]
	profilesMu.RUnlock()
	if !ok {
		return nil, NewConnectionError(descriptor, fmt.Errorf("unknown connection descriptor"))
	}
	resolved := cfg.clone()
	resolved.overrideFromEnv()
	resolved.fillDefaults()
	return resolved, nil
}
