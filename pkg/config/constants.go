package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "alvara"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ALVARA_DB_DSN"
	EnvDBHost = "ALVARA_DB_HOST"
	EnvDBUser = "ALVARA_DB_USER"
	EnvDBName = "ALVARA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
