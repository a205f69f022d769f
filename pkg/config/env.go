package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "OPTICA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "OPTICA_APP_ENV"
	EnvPort     = "OPTICA_APP_PORT"
	EnvDBDSN    = "OPTICA_DB_DSN"
	EnvDBHost   = "OPTICA_DB_HOST"
	EnvDBUser   = "OPTICA_DB_USER"
	EnvDBName   = "OPTICA_DB_NAME"
	EnvRedisURL = "OPTICA_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
