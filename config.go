package sqlite

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML duration
// strings like "250ms" or "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds the connection pragmas applied by OpenConfig. The
// zero Config is not useful; start from DefaultConfig.
type Config struct {
	// JournalMode is the journal_mode pragma, normally WAL.
	JournalMode string `yaml:"journal_mode"`
	// BusyTimeout is how long a statement waits on a locked
	// database before failing with a busy error.
	BusyTimeout Duration `yaml:"busy_timeout"`
	// Synchronous is the synchronous pragma, normally NORMAL under
	// WAL.
	Synchronous string `yaml:"synchronous"`
	// CacheSize is the cache_size pragma. Negative values are KiB,
	// positive values are pages.
	CacheSize int64 `yaml:"cache_size"`
	// ForeignKeys enables foreign key enforcement.
	ForeignKeys bool `yaml:"foreign_keys"`
	// TempStore is the temp_store pragma, normally memory.
	TempStore string `yaml:"temp_store"`
}

// DefaultConfig is the configuration OpenConfig applies when the
// caller has no overrides: WAL with a generous cache, suited to a
// long-lived process that owns its database file.
func DefaultConfig() Config {
	return Config{
		JournalMode: "WAL",
		BusyTimeout: Duration(5 * time.Second),
		Synchronous: "NORMAL",
		CacheSize:   1000000000,
		ForeignKeys: true,
		TempStore:   "memory",
	}
}

// LoadConfig reads a YAML config file, filling unset fields from
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sqlite.LoadConfig: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sqlite.LoadConfig %q: %w", path, err)
	}
	return cfg, nil
}

// pragmas renders the configuration as a pragma script.
func (cfg Config) pragmas() string {
	fk := "OFF"
	if cfg.ForeignKeys {
		fk = "ON"
	}
	return `PRAGMA journal_mode = ` + cfg.JournalMode + `;
PRAGMA synchronous = ` + cfg.Synchronous + `;
PRAGMA cache_size = ` + strconv.FormatInt(cfg.CacheSize, 10) + `;
PRAGMA foreign_keys = ` + fk + `;
PRAGMA temp_store = ` + cfg.TempStore + `;
`
}

// OpenConfig opens the database at path and applies cfg's busy
// timeout and pragmas before returning the connection.
func OpenConfig(path string, cfg Config) (*Conn, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	conn.db.BusyTimeout(time.Duration(cfg.BusyTimeout))
	if err := conn.Execute(cfg.pragmas()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite.OpenConfig: %w", err)
	}
	return conn, nil
}
