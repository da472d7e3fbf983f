package config

const (
	DefaultServerURL = "http://localhost:3000"
	DefaultModel     = "gpt-4o"
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/multiai",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Server: ServerConfig{
			URL: DefaultServerURL,
		},
		DefaultModel: DefaultModel,
		Storage: StorageConfig{
			Backend:   "file",
			KeyPrefix: "multiai:",
		},
		Security: SecurityConfig{
			Method: "plaintext",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# multiai System Configuration
# Location: ~/.config/multiai/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations, settings and user config are stored
data_directory = "~/.local/share/multiai"
`
}

func GenerateUserConfigTemplate() string {
	return `# multiai User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Model selected for new conversations when the server catalog has no default
default_model = "gpt-4o"

[server]
# Backend serving /api/config and /api/chat
url = "http://localhost:3000"

[storage]
# Where conversations, settings and API keys live:
#   file     - single JSON file in the data directory (default)
#   sqlite   - kv.db in the data directory
#   redis    - redis_addr / redis_password / redis_db
#   supabase - supabase_url / supabase_key (table kv_store)
#   memory   - nothing is kept after exit
backend = "file"
key_prefix = "multiai:"

[security]
# plaintext stores API keys as-is; ssh_key encrypts them with a key from ~/.ssh
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"
`
}
