package pgvector

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/vecload/core"
)

const (
	// DefaultTable is the logical table name; rows land in data_<table>.
	DefaultTable = "llamaindex"

	// DefaultDimensions matches the embedding model's output length.
	DefaultDimensions = 768

	defaultPort = 5432

	tablePrefix = "data_"
)

// Config describes the Postgres database holding the vector table.
type Config struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,min=1,max=65535"`
	Database string `validate:"required"`
	User     string `validate:"required"`
	Password string
	SSLMode  string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	// Table is the logical table name. With the data_ prefix it must fit
	// Postgres' 63 byte identifier limit.
	Table string `validate:"required,max=58"`

	// Dimensions is the length of the embedding column.
	Dimensions int `validate:"required,min=1,max=16000"`

	// PreDeleteTable drops the table before it is (re)created.
	PreDeleteTable bool

	// MaxConns caps the pool size. Zero keeps the pgx default.
	MaxConns int32 `validate:"min=0"`
}

// Option adjusts a parsed Config.
type Option func(*Config)

// WithTable sets the logical table name.
func WithTable(table string) Option {
	return func(c *Config) {
		c.Table = table
	}
}

// WithDimensions sets the embedding column length.
func WithDimensions(dims int) Option {
	return func(c *Config) {
		c.Dimensions = dims
	}
}

// WithPreDelete drops any existing table before creating it.
func WithPreDelete(enabled bool) Option {
	return func(c *Config) {
		c.PreDeleteTable = enabled
	}
}

// WithMaxConns caps the connection pool.
func WithMaxConns(n int32) Option {
	return func(c *Config) {
		c.MaxConns = n
	}
}

var validate = validator.New()

// ParseConnectionString splits a Postgres URL into a Config, applies opts and
// validates the result. Driver suffixes such as postgresql+psycopg2 are
// accepted. Failures wrap core.ErrConfig.
func ParseConnectionString(s string, opts ...Option) (*Config, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: connection string is empty", core.ErrConfig)
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}
	scheme, _, _ := strings.Cut(u.Scheme, "+")
	if scheme != "postgres" && scheme != "postgresql" {
		return nil, fmt.Errorf("%w: unsupported connection scheme %q", core.ErrConfig, u.Scheme)
	}

	cfg := &Config{
		Host:       u.Hostname(),
		Port:       defaultPort,
		Database:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:    u.Query().Get("sslmode"),
		Table:      DefaultTable,
		Dimensions: DefaultDimensions,
	}
	if p := u.Port(); p != "" {
		cfg.Port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid port %q", core.ErrConfig, p)
		}
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags. Failures wrap core.ErrConfig and name
// the offending fields.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: pgvector config: invalid %s", core.ErrConfig, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %w", core.ErrConfig, err)
}

// TableName returns the physical table name.
func (c *Config) TableName() string {
	return tablePrefix + c.Table
}

// DSN renders the config as a pgx connection URL.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// Redacted renders the DSN with the password masked, for logs.
func (c *Config) Redacted() string {
	u, err := url.Parse(c.DSN())
	if err != nil {
		return c.Host
	}
	return u.Redacted()
}
