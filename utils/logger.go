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

package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed out by the registry.
type Logger = logrus.Logger

var (
	defaultConsoleLevel = logrus.InfoLevel
	loggerRegistryMu    sync.RWMutex
	loggerRegistry      = map[string]*logrus.Logger{}
	consoleLogFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

func init() {
	if level, err := logrus.ParseLevel(EnvDefaultString("LOG_LEVEL", "info")); err == nil {
		defaultConsoleLevel = level
	}
}

// EnvDefaultString reads an environment variable with a fallback default.
func EnvDefaultString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return defaultValue
}

// EnvDefaultBool reads a boolean environment variable with a fallback default.
func EnvDefaultBool(key string, defaultValue bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "1" || s == "true" || s == "yes"
	}
	return defaultValue
}

type prefixedFormatter struct {
	prefix    string
	formatter logrus.Formatter
}

func (f *prefixedFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Message = fmt.Sprintf("[%s] %s", f.prefix, e.Message)
	return f.formatter.Format(e)
}

func newFormatter(name string) logrus.Formatter {
	if consoleLogFormat == "json" {
		return &prefixedFormatter{prefix: name, formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		}}
	}
	return &prefixedFormatter{prefix: name, formatter: &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	}}
}

// NewLogger returns the named logger, creating and registering it on first use.
// Loggers with the same name share one instance.
func NewLogger(name string) *logrus.Logger {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		name = "ROOT"
	}

	loggerRegistryMu.RLock()
	logger, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return logger
	}

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if logger, ok = loggerRegistry[name]; ok {
		return logger
	}

	logger = logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(defaultConsoleLevel)
	logger.SetFormatter(newFormatter(name))
	loggerRegistry[name] = logger
	return logger
}

// SetLoggerLevel adjusts the level of a registered logger by name.
// Unknown level strings are ignored.
func SetLoggerLevel(name string, level string) {
	logger := NewLogger(name)
	if parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		logger.SetLevel(parsed)
	}
}
