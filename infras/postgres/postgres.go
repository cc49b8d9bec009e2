package postgres

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"slotkeeper/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxIdleConnection = 10
	defaultMaxOpenConnection = 20
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
}

func (e endpoint) dsn() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		e.username,
		e.password,
		net.JoinHostPort(e.host, e.port),
		e.dbName,
		e.sslMode,
	)
}

func New(config *config.Config) *Connection {
	pg := config.DB.Postgres

	write := endpoint{
		name:     "write",
		username: pg.Write.Username,
		password: pg.Write.Password,
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		dbName:   pg.Prefix + pg.Write.Name,
		sslMode:  pg.Write.SSLMode,
	}

	read := endpoint{
		name:     "read",
		username: pg.Read.Username,
		password: pg.Read.Password,
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		dbName:   pg.Prefix + pg.Read.Name,
		sslMode:  pg.Read.SSLMode,
	}

	conn := &Connection{Write: connect(config, write)}

	// A missing read replica falls back to the primary.
	if read.host == "" {
		conn.Read = conn.Write
	} else {
		conn.Read = connect(config, read)
	}

	return conn
}

// Close releases both pools. Read may alias Write.
func (c *Connection) Close() error {
	var errs []error

	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}

	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}

	return errors.Join(errs...)
}

func connect(config *config.Config, e endpoint) *sqlx.DB {
	maxOpen := config.DB.Postgres.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConnection
	}

	maxIdle := config.DB.Postgres.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConnection
	}

	attempts := max(config.DB.Postgres.MaxRetry, 1)

	for retry := range attempts {
		sqlDB, err := sqlx.Connect("postgres", e.dsn())
		if err == nil {
			log.
				Info().
				Str("name", e.name).
				Str("host", e.host).
				Str("port", e.port).
				Str("dbName", e.dbName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(maxIdle)
			sqlDB.SetMaxOpenConns(maxOpen)

			return sqlDB
		}

		log.
			Error().
			Err(err).
			Str("name", e.name).
			Str("host", e.host).
			Str("port", e.port).
			Str("dbName", e.dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(config.DB.Postgres.RetryWaitTime) * time.Second)
	}

	log.Fatal().Str("name", e.name).Msg("Giving up connecting to database")

	return nil
}
