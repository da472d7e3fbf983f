package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ServerConfig struct {
	URL string `toml:"url"`
}

// StorageConfig selects the key-value backend that replaces browser storage.
type StorageConfig struct {
	Backend       string `toml:"backend"` // memory, file, sqlite, redis, supabase
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	KeyPrefix     string `toml:"key_prefix,omitempty"`
	SupabaseURL   string `toml:"supabase_url,omitempty"`
	SupabaseKey   string `toml:"supabase_key,omitempty"`
}

type SecurityConfig struct {
	Method     string `toml:"method"` // plaintext or ssh_key
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Server       ServerConfig   `toml:"server"`
	DefaultModel string         `toml:"default_model"`
	Storage      StorageConfig  `toml:"storage"`
	Security     SecurityConfig `toml:"security"`
}

type Config struct {
	DataDirectory string
	ServerURL     string
	DefaultModel  string
	Storage       StorageConfig
	Security      SecurityConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("MULTIAI_SERVER_URL"); url != "" {
		c.ServerURL = url
	}
	if dataDir := os.Getenv("MULTIAI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("MULTIAI_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if model := os.Getenv("MULTIAI_DEFAULT_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if db := os.Getenv("MULTIAI_REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			c.Storage.RedisDB = n
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("MULTIAI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may contain conversation snippets
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (MULTIAI_DEBUG=%s) ===", os.Getenv("MULTIAI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Warnf writes to the debug log when one is open.
func Warnf(format string, args ...any) {
	if DebugLog != nil {
		DebugLog.Printf("Warning: "+format, args...)
	}
}

func Load() (*Config, error) {
	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	cfg := &Config{DataDirectory: systemCfg.DataDirectory}
	if dataDir := os.Getenv("MULTIAI_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.ServerURL = userCfg.Server.URL
	cfg.DefaultModel = userCfg.DefaultModel
	cfg.Storage = userCfg.Storage
	cfg.Security = userCfg.Security

	cfg.applyEnvOverrides()

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}

	return cfg, nil
}

// NewEncryptionManager builds the cipher for API keys at rest.
// Returns nil when keys are stored in plain text.
func (c *Config) NewEncryptionManager() (*EncryptionManager, error) {
	switch EncryptionMethod(c.Security.Method) {
	case "", EncryptionNone, "plaintext":
		return nil, nil
	case EncryptionSSHKey:
		keyPath := ExpandPath(c.Security.SSHKeyPath)
		if keyPath == "" {
			keys, err := FindSSHKeys()
			if err != nil {
				return nil, fmt.Errorf("failed to scan for SSH keys: %w", err)
			}
			if len(keys) == 0 {
				return nil, fmt.Errorf("ssh_key security selected but no SSH key found")
			}
			keyPath = keys[0]
		}
		em := NewEncryptionManager(EncryptionSSHKey, keyPath)
		em.SetPassphrase(os.Getenv("MULTIAI_SSH_PASSPHRASE"))
		if err := em.Initialize(); err != nil {
			return nil, err
		}
		return em, nil
	default:
		return nil, fmt.Errorf("unknown security method: %s", c.Security.Method)
	}
}
