package app

import (
	"os"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/domain"
)

type migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// migrations are applied in order, each at most once. Every step must be
// safe to run against a schema that already has its tables.
var migrations = []migration{
	{
		Version: 1,
		Name:    "catalog and accounts",
		Up: func(tx *gorm.DB) error {
			return tx.Migrator().AutoMigrate(&domain.Product{}, &domain.Customer{}, &domain.User{}, &domain.Order{})
		},
	},
	{
		Version: 2,
		Name:    "offers and contact messages",
		Up: func(tx *gorm.DB) error {
			return tx.Migrator().AutoMigrate(&domain.Offer{}, &domain.ContactMessage{})
		},
	},
}

// MigrateDB applies pending schema versions, each in its own transaction.
// track enables SQL statement logging.
func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if !ok {
				err2 = errors.Errorf("%v", err1)
			}
			err = err2
			zap.S().Error(err2.Error())
		}
	}()

	db := a.gormDB
	if track {
		db = db.Debug()
	}
	if err := db.Migrator().AutoMigrate(&domain.SchemaMigration{}); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	var applied []domain.SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return errors.Wrap(err, "load applied migrations")
	}
	done := make(map[int]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		m := m
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&domain.SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return errors.Wrapf(err, "migration %d (%s)", m.Version, m.Name)
		}
		zap.L().Info("applied schema migration", zap.Int("version", m.Version), zap.String("name", m.Name))
	}
	return nil
}

// AppliedVersions lists the recorded schema versions in ascending order
func (a *Application) AppliedVersions() ([]int, error) {
	var versions []int
	err := a.gormDB.Model(&domain.SchemaMigration{}).Order("version").Pluck("version", &versions).Error
	return versions, err
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(append(domain.Tables, &domain.SchemaMigration{})...)
}

// InitDb drops every table and re-applies all migrations
func (a *Application) InitDb() error {
	a.DropAll()
	return a.MigrateDB(false)
}
