package config

// Supported gorm engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	GormEngine string `mapstructure:"gormEngine" toml:"gormEngine"`
	// Path is the database file of the sqlite engine.
	Path     string `mapstructure:"path"     toml:"path"`
	Host     string `mapstructure:"host"     toml:"host"`
	Port     int    `mapstructure:"port"     toml:"port"`
	User     string `mapstructure:"user"     toml:"user"`
	Password string `mapstructure:"password" toml:"password"`
	Name     string `mapstructure:"name"     toml:"name"`
	// Extras are appended to the dsn, e.g. "sslmode=disable".
	Extras string `mapstructure:"extras" toml:"extras"`
}
