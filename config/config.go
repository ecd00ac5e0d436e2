// Package config loads the YAML configuration of the udfsql command.
//
// Example:
//
//	log_level: info
//	error_policy: skip
//	max_call_depth: 32
//	builtins: true
//	data_dir: ./tables
//	scripts:
//	  - ./functions.sql
//	tables:
//	  - name: orders
//	    format: sqlite
//	    path: ${SHOP_DB:-./shop.db}
//	    table: orders
package config

import (
	"github.com/rulego/udfsql"
	"github.com/rulego/udfsql/eval"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
)

// Table formats
const (
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Config is the resolved configuration. Relative paths are already joined
// with BaseDir.
type Config struct {
	LogLevel     logger.Level
	ErrorPolicy  query.ErrorPolicy
	MaxCallDepth int
	Builtins     bool
	// DataDir 目录下的 *.json 表文件全部加载
	DataDir string
	// Scripts 启动时依次执行的 SQL 脚本
	Scripts []string
	Tables  []TableConfig
	// BaseDir is the directory of the configuration file
	BaseDir string
}

// TableConfig describes one table to register.
type TableConfig struct {
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
	// Table is the SQLite table name, defaults to Name
	Table string `yaml:"table"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		LogLevel:     logger.WARN,
		ErrorPolicy:  query.ErrorPolicyAbort,
		MaxCallDepth: eval.DefaultMaxCallDepth,
		Builtins:     true,
	}
}

// Options converts the configuration to engine options. Tables and
// scripts are not included; see OpenTables.
func (c *Config) Options() []udfsql.Option {
	opts := []udfsql.Option{
		udfsql.WithLogLevel(c.LogLevel),
		udfsql.WithErrorPolicy(c.ErrorPolicy),
		udfsql.WithMaxCallDepth(c.MaxCallDepth),
	}
	if !c.Builtins {
		opts = append(opts, udfsql.WithoutBuiltins())
	}
	return opts
}
