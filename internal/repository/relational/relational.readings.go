// FilePath: internal/repository/relational/relational.readings.go
package relational

import (
	"context"
	"fmt"
	"regexp"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/database"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Schema names the table and columns readings live in. Deployments that
// already own a table under other names map it here instead of migrating.
type Schema struct {
	Table       string
	Temperature string
	Latitude    string
	Longitude   string
	ReceivedAt  string
}

// DefaultSchema is the layout CreateTable produces when nothing is configured
func DefaultSchema() Schema {
	return Schema{
		Table:       "readings",
		Temperature: "temperature",
		Latitude:    "latitude",
		Longitude:   "longitude",
		ReceivedAt:  "received_at",
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects names that could not be used verbatim as SQL identifiers
func (s Schema) Validate() error {
	for _, name := range []string{s.Table, s.Temperature, s.Latitude, s.Longitude, s.ReceivedAt} {
		if !identifierPattern.MatchString(name) {
			return errors.NewValidationError(fmt.Sprintf("invalid SQL identifier %q", name), nil)
		}
	}
	return nil
}

// withDefaults fills empty names from DefaultSchema
func (s Schema) withDefaults() Schema {
	d := DefaultSchema()
	if s.Table == "" {
		s.Table = d.Table
	}
	if s.Temperature == "" {
		s.Temperature = d.Temperature
	}
	if s.Latitude == "" {
		s.Latitude = d.Latitude
	}
	if s.Longitude == "" {
		s.Longitude = d.Longitude
	}
	if s.ReceivedAt == "" {
		s.ReceivedAt = d.ReceivedAt
	}
	return s
}

var createTableTemplates = map[string]string{
	"mysql": `CREATE TABLE IF NOT EXISTS %[1]s (
			%[2]s DOUBLE NOT NULL,
			%[3]s DOUBLE NOT NULL,
			%[4]s DOUBLE NOT NULL,
			%[5]s DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	"postgres": `CREATE TABLE IF NOT EXISTS %[1]s (
			%[2]s DOUBLE PRECISION NOT NULL,
			%[3]s DOUBLE PRECISION NOT NULL,
			%[4]s DOUBLE PRECISION NOT NULL,
			%[5]s TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	"sqlite": `CREATE TABLE IF NOT EXISTS %[1]s (
			%[2]s REAL NOT NULL,
			%[3]s REAL NOT NULL,
			%[4]s REAL NOT NULL,
			%[5]s DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
}

type ReadingRepo struct {
	BaseRepo
	schema      Schema
	insertQuery string
	listQuery   string
}

var _ repository.ReadingRepository = (*ReadingRepo)(nil)

// NewReadingRepository uses DefaultSchema
func NewReadingRepository(db database.DB) *ReadingRepo {
	repo, _ := NewReadingRepositoryWithSchema(db, DefaultSchema())
	return repo
}

// NewReadingRepositoryWithSchema binds the repository to the given table layout.
// Empty names fall back to DefaultSchema.
func NewReadingRepositoryWithSchema(db database.DB, schema Schema) (*ReadingRepo, error) {
	schema = schema.withDefaults()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &ReadingRepo{
		BaseRepo: BaseRepo{db: db},
		schema:   schema,
		insertQuery: fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES (?, ?, ?)`, schema.Table, schema.Temperature, schema.Latitude, schema.Longitude),
		listQuery: fmt.Sprintf(
			`SELECT %s AS temperature, %s AS latitude, %s AS longitude, %s AS received_at FROM %s`,
			schema.Temperature, schema.Latitude, schema.Longitude, schema.ReceivedAt, schema.Table),
	}, nil
}

// CreateTable creates the readings table in the pool's dialect when it does not exist.
// The relay never alters an existing table.
func (r *ReadingRepo) CreateTable(ctx context.Context) error {
	tmpl, ok := createTableTemplates[r.db.Driver()]
	if !ok {
		return errors.NewStorageError("no table definition for driver "+r.db.Driver(), nil)
	}
	s := r.schema
	stmt := fmt.Sprintf(tmpl, s.Table, s.Temperature, s.Latitude, s.Longitude, s.ReceivedAt)
	if _, err := r.db.GetDB().ExecContext(ctx, stmt); err != nil {
		return errors.NewStorageError("failed to create table "+s.Table, err)
	}
	nuts.L.Infof("[ReadingRepo] Ensured table %s on %s", s.Table, r.db.Driver())
	return nil
}

func (r *ReadingRepo) InsertReading(ctx context.Context, temperature, latitude, longitude float64) error {
	_, err := r.ExecContext(ctx, r.insertQuery, temperature, latitude, longitude)
	return err
}

func (r *ReadingRepo) ListReadings(ctx context.Context) ([]models.Reading, error) {
	readings := []models.Reading{}
	if err := r.SelectContext(ctx, &readings, r.listQuery); err != nil {
		return nil, err
	}
	return readings, nil
}
