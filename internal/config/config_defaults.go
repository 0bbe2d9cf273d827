package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("server.maxRequestSize", 8*1024*1024) // fits a 5MB resume plus JSON overhead

	// TLS Configuration
	v.SetDefault("server.tls.mode", "disabled") // disabled, server
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.autoReload", true)
	v.SetDefault("server.tls.debounceDelay", time.Second)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.maxUploadSize", 5*1024*1024) // 5MB
	v.SetDefault("app.resumeExtensions", []string{".pdf", ".docx"})

	// Auth Configuration
	v.SetDefault("auth.bcryptCost", 10)
	v.SetDefault("auth.seedDemoUsers", true)

	// Storage Configuration
	v.SetDefault("storage.driver", StorageDriverMemory)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.maxOpenConns", 10)
	v.SetDefault("storage.maxIdleConns", 5)
	v.SetDefault("storage.connMaxLifetime", 30*time.Minute)
	v.SetDefault("storage.migrateOnStart", true)
	v.SetDefault("storage.circuitBreaker.enabled", true)
	v.SetDefault("storage.circuitBreaker.maxRequests", 3)
	v.SetDefault("storage.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("storage.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("storage.circuitBreaker.minRequests", 5)
	v.SetDefault("storage.circuitBreaker.failureThreshold", 0.6)

	// Session Configuration
	v.SetDefault("session.store", SessionStoreMemory)
	v.SetDefault("session.cookieName", "rg_session")
	v.SetDefault("session.cookieSecure", false)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.keyPrefix", "resumegenius:session:")

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.databaseDSN", "")
	v.SetDefault("vault.secrets.redisPassword", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumegenius")
	v.SetDefault("observability.serviceVersion", "") // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.prettyPrint", true)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
