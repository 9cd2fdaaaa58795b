package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "suq"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SUQ_DB_DSN"
	EnvDBHost = "SUQ_DB_HOST"
	EnvDBUser = "SUQ_DB_USER"
	EnvDBName = "SUQ_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
