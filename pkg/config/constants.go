package config

const (
	EnvPrefix = "BIDKART"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "BIDKART_DB_DSN"
	EnvDBHost = "BIDKART_DB_HOST"
	EnvDBUser = "BIDKART_DB_USER"
	EnvDBName = "BIDKART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
