package app

import (
	"strings"
	"time"

	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/utils"
)

type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	Port            string
	AllowedOrigins  []string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SectionCacheTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	sectionCacheTTLSeconds := utils.GetEnvAsInt("SECTION_CACHE_TTL", 300, log)

	var origins []string
	for _, o := range strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		ServiceName:     utils.GetEnv("SERVICE_NAME", "logbook-backend", log),
		Environment:     utils.GetEnv("ENVIRONMENT", "development", log),
		Version:         utils.GetEnv("SERVICE_VERSION", "dev", log),
		Port:            utils.GetEnv("PORT", "8080", log),
		AllowedOrigins:  origins,
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		SectionCacheTTL: time.Duration(sectionCacheTTLSeconds) * time.Second,
	}
}
