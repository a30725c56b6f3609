package env

import "strings"

type Config struct {
	MongoURI     string
	DatabaseName string

	Port string

	JWTSecret          string
	JWTAlgorithm       string
	JWTExpirationHours int

	CORSOrigins string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	Timezone    string
	Environment string
	LogLevel    string
	Debug       bool
}

func Load() *Config {
	return &Config{
		MongoURI:           GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:       GetEnv("DATABASE_NAME", "sahelys"),
		Port:               GetEnv("PORT", "8080"),
		JWTSecret:          GetEnv("JWT_SECRET", "your-secret-key"),
		JWTAlgorithm:       GetEnv("JWT_ALGORITHM", "HS256"),
		JWTExpirationHours: GetEnv("JWT_EXPIRATION_HOURS", 24),
		CORSOrigins:        GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:19006"),
		AdminEmail:         GetEnv("ADMIN_EMAIL", "admin@sahelys.bf"),
		AdminPassword:      GetEnv("ADMIN_PASSWORD", "admin123"),
		AdminName:          GetEnv("ADMIN_NAME", "Administrateur"),
		Timezone:           GetEnv("TIMEZONE", "Africa/Ouagadougou"),
		Environment:        GetEnv("ENVIRONMENT", "development"),
		LogLevel:           GetEnv("LOG_LEVEL", "info"),
		Debug:              GetEnv("DEBUG", true),
	}
}

func (c *Config) GetCORSOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
