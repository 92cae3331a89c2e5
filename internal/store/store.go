package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/KaramelBytes/atmscope/internal/logger"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ErrUnknownDriver is returned by Open for unsupported driver names.
var ErrUnknownDriver = errors.New("unknown database driver")

// ATM is the persisted row of the atm_data table.
type ATM struct {
	ID        string  `gorm:"primaryKey;size:36"`
	Seq       int64   `gorm:"column:seq;index"`
	Name      string  `gorm:"column:name;index;not null"`
	Address   string  `gorm:"column:address"`
	X         float64 `gorm:"column:x"`
	Y         float64 `gorm:"column:y"`
	Ward      *string `gorm:"column:ward;index"`
	ZipCode   *string `gorm:"column:zipcode;index"`
	CreatedAt time.Time
}

func (ATM) TableName() string { return "atm_data" }

// Record converts a row to the domain type. Null ward/zip become "".
func (a ATM) Record() atm.Record {
	r := atm.Record{Name: a.Name, Address: a.Address, X: a.X, Y: a.Y}
	if a.Ward != nil {
		r.Ward = *a.Ward
	}
	if a.ZipCode != nil {
		r.ZipCode = *a.ZipCode
	}
	return r
}

// NameCount is a distinct ATM name and its number of locations.
type NameCount struct {
	Name  string
	Count int
}

// Options configures a store session.
type Options struct {
	Driver    string // sqlite | postgres
	DSN       string
	BatchSize int
	Debug     bool
}

// Session is a database handle scoped to one run. Close releases it.
type Session struct {
	db        *gorm.DB
	log       *logger.Logger
	batchSize int
}

// Open connects to the configured database.
func Open(opt Options, log *logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.Nop()
	}
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opt.Driver)) {
	case "", "sqlite", "sqlite3":
		dialector = sqlite.Open(opt.DSN)
	case "postgres", "postgresql", "pg":
		dialector = postgres.Open(opt.DSN)
	default:
		return nil, fmt.Errorf("%w: %s (use sqlite or postgres)", ErrUnknownDriver, opt.Driver)
	}

	level := gormLogger.Silent
	if opt.Debug {
		level = gormLogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opt.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opt.Driver, err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect %s: %w", opt.Driver, err)
	}
	batch := opt.BatchSize
	if batch <= 0 {
		batch = 500
	}
	log.Debug("database connected", "driver", opt.Driver, "dsn", opt.DSN)
	return &Session{db: db, log: log.With("service", "store"), batchSize: batch}, nil
}

// Close releases the underlying connection pool.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Debug("database closed")
	return sqlDB.Close()
}

// Exists reports whether the atm_data table has been created. Read-only
// flows check it instead of migrating.
func (s *Session) Exists(ctx context.Context) bool {
	return s.db.WithContext(ctx).Migrator().HasTable(&ATM{})
}

// Migrate creates or updates the schema. With reset the table is dropped
// first.
func (s *Session) Migrate(ctx context.Context, reset bool) error {
	db := s.db.WithContext(ctx)
	if reset {
		if err := db.Migrator().DropTable(&ATM{}); err != nil {
			return fmt.Errorf("drop atm_data: %w", err)
		}
		s.log.Info("dropped table", "table", ATM{}.TableName())
	}
	if err := db.AutoMigrate(&ATM{}); err != nil {
		return fmt.Errorf("migrate atm_data: %w", err)
	}
	return nil
}

// Insert stores rows in batches after the existing ones. Rows get a UUID
// if they have none and a sequence number preserving input order.
func (s *Session) Insert(ctx context.Context, rows []ATM) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var last int64
	err := s.db.WithContext(ctx).Model(&ATM{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		rows[i].Seq = last + int64(i) + 1
	}
	res := s.db.WithContext(ctx).CreateInBatches(rows, s.batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert atm_data: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// ForDensity returns every record whose ward and ZIP code are both set.
func (s *Session) ForDensity(ctx context.Context) ([]atm.Record, error) {
	var rows []ATM
	err := s.db.WithContext(ctx).
		Where("ward IS NOT NULL AND zipcode IS NOT NULL").
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query density records: %w", err)
	}
	return toRecords(rows), nil
}

// ByName returns every record with exactly the given name.
func (s *Session) ByName(ctx context.Context, name string) ([]atm.Record, error) {
	var rows []ATM
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query records for %q: %w", name, err)
	}
	return toRecords(rows), nil
}

// NameCounts lists distinct names by count descending, then name.
func (s *Session) NameCounts(ctx context.Context) ([]NameCount, error) {
	var out []NameCount
	err := s.db.WithContext(ctx).
		Model(&ATM{}).
		Select("name, COUNT(*) AS count").
		Group("name").
		Order("count DESC, name").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query name counts: %w", err)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *Session) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&ATM{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count atm_data: %w", err)
	}
	return n, nil
}

func toRecords(rows []ATM) []atm.Record {
	out := make([]atm.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}
