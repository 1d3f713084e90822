package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:        "~/.config/quipu",
			SQLiteFile:  "quipu.db",
			JournalMode: "wal",
		},
		Display: DisplayConfig{
			Limit:       20,
			DefaultView: "today",
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7774,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}
