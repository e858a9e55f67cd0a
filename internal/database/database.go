package database

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store types.
const (
	TypeNone     = "none"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Config selects and addresses the database.
type Config struct {
	Type     string
	Path     string // sqlite file; empty means in-memory
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// Manager handles database connections and operations.
type Manager struct {
	DB     *gorm.DB
	SqlDB  *sql.DB
	Config Config
	Logger zerolog.Logger
}

// NewManager creates a new database manager.
func NewManager(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		Config: cfg,
		Logger: log,
	}
}

// Connect opens the configured database. A postgres store that cannot be
// reached falls back to sqlite at Config.Path.
func (m *Manager) Connect() error {
	var err error

	switch m.Config.Type {
	case TypePostgres:
		m.DB, err = m.GetPostgresDB()
		if err == nil {
			if err = ping(m.DB); err == nil {
				m.Logger.Info().Str("host", m.Config.Host).Msg("Connected to Postgres")
				break
			}
		}
		m.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
		m.DB, err = m.GetSqliteDB(m.Config.Path)
	case TypeSQLite:
		m.DB, err = m.GetSqliteDB(m.Config.Path)
	default:
		return fmt.Errorf("unsupported store type %q", m.Config.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	m.SqlDB, err = m.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if m.DB.Dialector.Name() == TypePostgres {
		m.SqlDB.SetMaxOpenConns(10)
	}
	return nil
}

// Setup migrates the given models.
func (m *Manager) Setup(models ...any) error {
	m.Logger.Info().Msg("Migrating schema")
	if err := m.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	m.Logger.Info().Msg("Database setup complete")
	return nil
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	if m.SqlDB == nil {
		return nil
	}
	return m.SqlDB.Close()
}

// GetPostgresDB returns a connection to the Postgres database.
func (m *Manager) GetPostgresDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		m.Config.Host,
		m.Config.Port,
		m.Config.Username,
		m.Config.Password,
		m.Config.Database,
	)

	m.Logger.Debug().Str("host", m.Config.Host).Str("database", m.Config.Database).Msg("Connecting to Postgres DB")

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// GetSqliteDB returns a connection to a SQLite database.
// If path is empty, uses an in-memory database.
func (m *Manager) GetSqliteDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		m.Logger.Info().Msg("Using in-memory SQLite DB")
	} else {
		m.Logger.Info().Str("path", path).Msg("Using local SQLite DB")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	return db, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
