package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/storage"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML layout. Scalars that users commonly quote or
// write loosely are decoded as any and converted with cast.
type fileConfig struct {
	LogLevel     string        `yaml:"log_level"`
	ErrorPolicy  string        `yaml:"error_policy"`
	MaxCallDepth any           `yaml:"max_call_depth"`
	Builtins     any           `yaml:"builtins"`
	DataDir      string        `yaml:"data_dir"`
	Scripts      []string      `yaml:"scripts"`
	Tables       []TableConfig `yaml:"tables"`
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Load reads the configuration file at path with environment
// interpolation. getenv is usually os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, filepath.Dir(absPath), getenv)
}

// Parse decodes YAML configuration. Relative paths are resolved against
// baseDir.
func Parse(data []byte, baseDir string, getenv func(string) string) (*Config, error) {
	if getenv != nil {
		data = interpolateEnv(data, getenv)
	}
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Defaults()
	cfg.BaseDir = baseDir
	var errs []string

	if raw.LogLevel != "" {
		level, err := logger.ParseLevel(raw.LogLevel)
		if err != nil {
			errs = append(errs, err.Error())
		}
		cfg.LogLevel = level
	}
	policy, err := query.ParseErrorPolicy(raw.ErrorPolicy)
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.ErrorPolicy = policy

	if raw.MaxCallDepth != nil {
		depth, err := cast.ToIntE(raw.MaxCallDepth)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("max_call_depth: %v", err))
		case depth < 1:
			errs = append(errs, fmt.Sprintf("max_call_depth: must be positive, got %d", depth))
		default:
			cfg.MaxCallDepth = depth
		}
	}
	if raw.Builtins != nil {
		b, err := toBool(raw.Builtins)
		if err != nil {
			errs = append(errs, fmt.Sprintf("builtins: %v", err))
		}
		cfg.Builtins = b
	}

	if raw.DataDir != "" {
		cfg.DataDir = resolve(baseDir, raw.DataDir)
	}
	for _, s := range raw.Scripts {
		cfg.Scripts = append(cfg.Scripts, resolve(baseDir, s))
	}

	seen := make(map[string]bool)
	for i, t := range raw.Tables {
		t.Format = strings.ToLower(t.Format)
		if t.Format == "" {
			t.Format = FormatJSON
		}
		switch {
		case t.Path == "":
			errs = append(errs, fmt.Sprintf("tables[%d]: path is required", i))
		case t.Format != FormatJSON && t.Format != FormatSQLite:
			errs = append(errs, fmt.Sprintf("tables[%d]: unknown format %q, expected json or sqlite", i, t.Format))
		case t.Format == FormatSQLite && t.Name == "":
			errs = append(errs, fmt.Sprintf("tables[%d]: sqlite tables need a name", i))
		}
		if t.Table == "" {
			t.Table = t.Name
		}
		if t.Name != "" {
			key := strings.ToLower(t.Name)
			if seen[key] {
				errs = append(errs, fmt.Sprintf("tables[%d]: duplicate table %s", i, t.Name))
			}
			seen[key] = true
		}
		t.Path = resolve(baseDir, t.Path)
		cfg.Tables = append(cfg.Tables, t)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return cfg, nil
}

// OpenTables loads DataDir and every configured table into catalog. The
// returned function closes the SQLite databases that were opened.
func (c *Config) OpenTables(ctx context.Context, catalog *storage.Catalog) (_ func() error, err error) {
	var dbs []*sql.DB
	closeAll := func() error {
		var first error
		for _, db := range dbs {
			if err := db.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	if c.DataDir != "" {
		if _, err := catalog.LoadDir(ctx, c.DataDir); err != nil {
			return nil, err
		}
	}
	// 同一个 SQLite 文件只打开一次
	opened := make(map[string]*sql.DB)
	for _, t := range c.Tables {
		switch t.Format {
		case FormatSQLite:
			db, ok := opened[t.Path]
			if !ok {
				db, err = storage.OpenSQLite(t.Path)
				if err != nil {
					return nil, err
				}
				opened[t.Path] = db
				dbs = append(dbs, db)
			}
			table, err := storage.OpenSQLiteTable(ctx, db, t.Name, t.Table)
			if err != nil {
				return nil, err
			}
			catalog.Register(table)
		default:
			table, err := storage.LoadJSONTable(t.Path)
			if err != nil {
				return nil, err
			}
			if t.Name != "" {
				catalog.Register(renamed{table, t.Name})
			} else {
				catalog.Register(table)
			}
		}
	}
	return closeAll, nil
}

// renamed registers a table under a configured name
type renamed struct {
	storage.Table
	name string
}

func (r renamed) Name() string { return r.name }

func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		value := getenv(string(parts[1]))
		if value == "" && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// toBool accepts YAML booleans plus yes/no and on/off, which yaml.v3 leaves as strings.
func toBool(v any) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
	}
	return cast.ToBoolE(v)
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
