package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/saajjewels/storefront/config"
)

// getDatabase opens the pool and checks connectivity within the acquire
// timeout. The handle is returned even when the check fails so the caller
// can keep serving in degraded mode.
func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg, workdir)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return db, errors.Wrap(err, "database handle")
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	if cfg.IdleTimeout > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.IdleTimeout)
	}

	timeout := cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return db, errors.Wrapf(err, "connect %s database", cfg.Type)
	}
	return db, nil
}

func dialectorFor(cfg config.DBConfig, workdir string) (gorm.Dialector, error) {
	switch cfg.Type {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, sslMode(cfg.SslMode))
		return postgres.New(postgres.Config{DSN: dsn}), nil
	case "sqlite":
		if cfg.Name == ":memory:" {
			return sqlite.Open("file::memory:?cache=shared"), nil
		}
		dir := path.Join(workdir, "data")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create sqlite data dir")
		}
		return sqlite.Open(path.Join(dir, cfg.Name+".db")), nil
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}
}

func sslMode(v string) string {
	if v == "" {
		return "disable"
	}
	return v
}
