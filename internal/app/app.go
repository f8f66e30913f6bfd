package app

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/config"
	"github.com/saajjewels/storefront/internal/catalog"
	"github.com/saajjewels/storefront/internal/guard"
	"github.com/saajjewels/storefront/internal/notify"
	"github.com/saajjewels/storefront/internal/payment"
	"github.com/saajjewels/storefront/internal/upload"
	"github.com/saajjewels/storefront/pkg/common"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	dbErr     error
	sched     *cron.Cron
	catalog   *catalog.Service
	uploader  upload.Uploader
	sessions  *guard.Sessions
	notifier  *notify.Notifier
	razorpay  *payment.Client
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ CatalogProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// DBError returns the error from the startup connectivity check
func (a *Application) DBError() error {
	return a.dbErr
}

// NewWithDB builds an application around an already opened database,
// skipping logger and connection setup. Used by tests and tools.
func NewWithDB(cfg *config.AppConfig, db *gorm.DB) *Application {
	a := NewApplication(cfg)
	a.gormDB = db
	a.initServices(cfg)
	a.initJob()
	return a
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.dbErr = nil
	a.catalog = catalog.NewService(catalog.NewGormRepository(db))
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalog
}

func (a *Application) Uploader() upload.Uploader {
	return a.uploader
}

func (a *Application) Sessions() *guard.Sessions {
	return a.sessions
}

func (a *Application) Notifier() *notify.Notifier {
	return a.notifier
}

func (a *Application) Razorpay() *payment.Client {
	return a.razorpay
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Init wires logging, storage and the domain services. A database that
// cannot be reached is not fatal: the application keeps running and every
// storage call fails until connectivity returns.
func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg.Logger)

	a.gormDB, a.dbErr = getDatabase(cfg.Database, cfg.System.Workdir)
	if a.dbErr != nil {
		zap.S().Warnf("Database connection failed, serving in degraded mode: %v", a.dbErr)
	} else {
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
		if err := a.MigrateDB(cfg.Database.Debug); err != nil {
			zap.S().Errorf("database migration failed: %v", err)
		}
		a.checkSuper()
	}

	a.initServices(cfg)
	a.initJob()
}

func (a *Application) initServices(cfg *config.AppConfig) {
	if cfg.System.NodeID >= 0 {
		if err := common.SetNode(cfg.System.NodeID); err != nil {
			zap.L().Warn("invalid node id, using a random one", zap.Error(err))
		}
	}
	a.catalog = catalog.NewService(catalog.NewGormRepository(a.gormDB))
	a.uploader = newUploader(cfg)

	secret := cfg.Auth.JwtSecret
	if secret == "" {
		secret = randomSecret()
		zap.L().Warn("JWT_SECRET is not set, using a random secret; sessions will not survive restarts")
	}
	a.sessions = guard.NewSessions(secret, cfg.Auth.TokenTTL)

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.Mail.Enabled() {
		mailer = notify.NewSMTPMailer(cfg.Mail)
	}
	a.notifier = notify.NewNotifier(mailer, cfg.Mail.NotifyTo)

	a.razorpay = payment.NewClient(cfg.Razorpay)
	if !a.razorpay.Enabled() {
		zap.L().Warn("Razorpay credentials are not set, payment endpoints will fail")
	}
}

func newUploader(cfg *config.AppConfig) upload.Uploader {
	if cfg.Cloudinary.Enabled() {
		u, err := upload.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.ApiKey, cfg.Cloudinary.ApiSecret, cfg.Cloudinary.Folder)
		if err == nil {
			return u
		}
		zap.L().Error("cloudinary init failed, falling back to local storage", zap.Error(err))
	}
	zap.L().Warn("Cloudinary is not configured, storing uploads on local disk", zap.String("dir", cfg.GetUploadDir()))
	u, err := upload.NewLocalUploader(cfg.GetUploadDir(), LocalUploadPrefix)
	if err != nil {
		zap.L().Error("local upload dir unavailable", zap.Error(err))
		return nil
	}
	return u
}

// LocalUploadPrefix is the URL prefix local uploads are served under
const LocalUploadPrefix = "/uploads"

func initLogger(cfg config.LogConfig) {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.notifier != nil {
		a.notifier.Wait()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
