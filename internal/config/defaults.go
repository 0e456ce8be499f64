package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		ServiceName: "toolgate",
		Environment: "prod",
		Server: ServerConfig{
			Port: 8060,
			Host: "localhost",
		},
		Downstream: DownstreamConfig{
			DataServiceURL:  "http://localhost:8061",
			TimeoutSeconds:  30,
			MaxResponseMB:   50,
			CacheTTLSeconds: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
