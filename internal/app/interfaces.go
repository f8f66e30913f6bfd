package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/config"
	"github.com/saajjewels/storefront/internal/catalog"
	"github.com/saajjewels/storefront/internal/guard"
	"github.com/saajjewels/storefront/internal/notify"
	"github.com/saajjewels/storefront/internal/payment"
	"github.com/saajjewels/storefront/internal/upload"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// CatalogProvider provides the product catalog service
type CatalogProvider interface {
	Catalog() *catalog.Service
}

// UploaderProvider provides the image store
type UploaderProvider interface {
	Uploader() upload.Uploader
}

// SessionProvider provides customer session tokens
type SessionProvider interface {
	Sessions() *guard.Sessions
}

// NotifierProvider provides event notifications
type NotifierProvider interface {
	Notifier() *notify.Notifier
}

// PaymentProvider provides the payment gateway client
type PaymentProvider interface {
	Razorpay() *payment.Client
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	CatalogProvider
	UploaderProvider
	SessionProvider
	NotifierProvider
	PaymentProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb() error
	DropAll()
	// DBError reports the startup connectivity failure, if any
	DBError() error
}
