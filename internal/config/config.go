package config

import "time"

// Config holds client configuration values.
type Config struct {
	ServerURL      string        `mapstructure:"server_url" yaml:"server_url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	HeartBeat      time.Duration `mapstructure:"heart_beat" yaml:"heart_beat"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	SessionDBPath  string        `mapstructure:"session_db_path" yaml:"session_db_path"`
	// MessageWindow is how long the presentation layer keeps a
	// transient game message on screen.
	MessageWindow time.Duration `mapstructure:"message_window" yaml:"message_window"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ServerURL:      "ws://localhost:8080/ws",
		ReconnectDelay: 5 * time.Second,
		HeartBeat:      4 * time.Second,
		ConnectTimeout: 10 * time.Second,
		LogLevel:       "info",
		SessionDBPath:  "cardi-session.db",
		MessageWindow:  4 * time.Second,
	}
}
