package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
)

// defaultSecretKey is the compiled-in signing secret. Usable for local
// development only; Validate rejects it in production.
const defaultSecretKey = "your-secret-key-change-in-production"

var (
	validEnvironments    = []string{EnvDevelopment, EnvStaging, EnvProduction}
	validLogLevels       = []string{"DEBUG", "INFO", "WARNING", "WARN", "ERROR"}
	validVectorStores    = []string{VectorStorePgvector, VectorStoreFAISS, VectorStorePinecone, VectorStoreWeaviate, VectorStoreChroma}
	validAlgorithms      = []string{"HS256", "HS384", "HS512"}
	validIsolationLevels = []string{IsolationDatabase, IsolationSchema, IsolationRow}
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	// 0. Nil receiver check
	if c == nil {
		return ErrConfigNil
	}

	// 1. Runtime mode validation
	if !slices.Contains(validEnvironments, c.Environment) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidEnvironment, c.Environment, validEnvironments)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidLogLevel, c.LogLevel, validLogLevels)
	}

	// 2. Server binding validation
	if c.Host == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidHost)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPort, c.Port)
	}

	// 3. API prefix validation
	// The versioned route group is registered under this prefix; a trailing
	// slash would produce double-slash patterns.
	if err := validateAPIPrefix(c.APIPrefix); err != nil {
		return err
	}

	// 4. CORS origin validation
	for _, origin := range c.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}

	// 5. LLM configuration validation
	// Temperature range: 0.0 (deterministic) to 2.0 (maximum creativity)
	if c.LLMTemperature < 0.0 || c.LLMTemperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.LLMTemperature)
	}

	if c.LLMMaxTokens < 1 || c.LLMMaxTokens > 1048576 {
		return fmt.Errorf("%w: must be between 1 and 1,048,576, got %d", ErrInvalidMaxTokens, c.LLMMaxTokens)
	}

	// 6. Vector store and chunking validation
	if !slices.Contains(validVectorStores, c.VectorStoreType) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidVectorStore, c.VectorStoreType, validVectorStores)
	}

	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: embedding model cannot be empty", ErrInvalidEmbedding)
	}

	// pgvector supports up to 16,000 dimensions per vector
	if c.EmbeddingDimension < 1 || c.EmbeddingDimension > 16000 {
		return fmt.Errorf("%w: dimension must be between 1 and 16,000, got %d",
			ErrInvalidEmbedding, c.EmbeddingDimension)
	}

	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}

	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk size), got overlap %d for size %d",
			ErrInvalidChunking, c.ChunkOverlap, c.ChunkSize)
	}

	// 7. Security validation
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key cannot be empty", ErrInvalidSecretKey)
	}

	if c.IsProduction() {
		if c.SecretKey == defaultSecretKey {
			return fmt.Errorf("%w: default secret key is not allowed in production", ErrInvalidSecretKey)
		}
		if len(c.SecretKey) < 32 {
			return fmt.Errorf("%w: secret key must be at least 32 characters in production (got %d)",
				ErrInvalidSecretKey, len(c.SecretKey))
		}
	} else if c.SecretKey == defaultSecretKey {
		slog.Warn("Using default signing secret",
			"warning", "Set SECRET_KEY before deploying to production")
	}

	if !slices.Contains(validAlgorithms, c.Algorithm) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidAlgorithm, c.Algorithm, validAlgorithms)
	}

	if c.AccessTokenExpireMinutes < 1 {
		return fmt.Errorf("%w: access token lifetime must be positive, got %d minutes",
			ErrInvalidTokenLifetime, c.AccessTokenExpireMinutes)
	}

	if c.RefreshTokenExpireDays < 1 {
		return fmt.Errorf("%w: refresh token lifetime must be positive, got %d days",
			ErrInvalidTokenLifetime, c.RefreshTokenExpireDays)
	}

	// 8. Tenant isolation validation
	// The level is validated and exposed; enforcement belongs to the tenant
	// store implementation.
	if !slices.Contains(validIsolationLevels, c.TenantIsolationLevel) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidIsolationLevel, c.TenantIsolationLevel, validIsolationLevels)
	}

	// 9. Storage URL validation
	// Scheme checks only; pgxpool.ParseConfig and redis.ParseURL perform the
	// authoritative parse when the clients are constructed at startup.
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: database URL cannot be empty", ErrInvalidDatabasePool)
	}

	if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("%w: database URL must use postgres:// or postgresql:// scheme",
			ErrInvalidDatabasePool)
	}

	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("%w: redis URL must use redis:// or rediss:// scheme", ErrInvalidDatabasePool)
	}

	// 10. Database pool sizing validation
	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("%w: max conns must be positive, got %d", ErrInvalidDatabasePool, c.DatabaseMaxConns)
	}

	if c.DatabaseMinConns < 0 || c.DatabaseMinConns > c.DatabaseMaxConns {
		return fmt.Errorf("%w: min conns must be in [0, max conns], got min %d for max %d",
			ErrInvalidDatabasePool, c.DatabaseMinConns, c.DatabaseMaxConns)
	}

	if c.DatabaseConnLifetime <= 0 || c.DatabaseConnIdleTime <= 0 {
		return fmt.Errorf("%w: connection lifetimes must be positive", ErrInvalidDatabasePool)
	}

	// 11. Rate limit validation
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("%w: requests per second must be positive, got %g",
			ErrInvalidRateLimit, c.RateLimitPerSecond)
	}

	if c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: burst must be positive, got %d", ErrInvalidRateLimit, c.RateLimitBurst)
	}

	return nil
}

// validateAPIPrefix checks the versioned API prefix format.
// Valid prefixes start with "/" and do not end with one: "/api/v1", "/v2".
func validateAPIPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: prefix cannot be empty", ErrInvalidAPIPrefix)
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidAPIPrefix, prefix)
	}
	if strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("%w: %q must not end with /", ErrInvalidAPIPrefix, prefix)
	}
	if strings.ContainsAny(prefix, " \t\n") {
		return fmt.Errorf("%w: %q must not contain whitespace", ErrInvalidAPIPrefix, prefix)
	}
	return nil
}

// validateOrigin checks a single CORS origin entry.
// "*" allows any origin; everything else must be a scheme://host[:port] URL.
func validateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	if origin == "" {
		return fmt.Errorf("%w: origin cannot be empty", ErrInvalidCORSOrigin)
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidCORSOrigin, origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q must be scheme://host[:port]", ErrInvalidCORSOrigin, origin)
	}
	return nil
}
