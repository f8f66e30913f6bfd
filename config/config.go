package config

import (
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment names accepted in system.env / APP_ENV
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir" envconfig:"WORKDIR"`
	Env      string `yaml:"env" envconfig:"APP_ENV"`
	// NodeID names this process in generated ids, 0-1023. Negative picks one at random.
	NodeID int64 `yaml:"node_id" envconfig:"NODE_ID"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host        string   `yaml:"host" envconfig:"HOST"`
	Port        int      `yaml:"port" envconfig:"PORT"`
	BodyLimit   string   `yaml:"body_limit"`
	CorsOrigins []string `yaml:"cors_origins"`
}

// DBConfig database configuration
type DBConfig struct {
	Type           string        `yaml:"type" envconfig:"DB_TYPE"`
	Host           string        `yaml:"host" envconfig:"POSTGRES_HOST"`
	Port           int           `yaml:"port" envconfig:"POSTGRES_PORT"`
	Name           string        `yaml:"name" envconfig:"POSTGRES_DB"`
	User           string        `yaml:"user" envconfig:"POSTGRES_USER"`
	Passwd         string        `yaml:"passwd" envconfig:"POSTGRES_PASSWORD"`
	SslMode        string        `yaml:"sslmode" envconfig:"POSTGRES_SSLMODE"`
	MaxConn        int           `yaml:"max_conn"`
	IdleConn       int           `yaml:"idle_conn"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	Debug          bool          `yaml:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AdminConfig holds the shared secret that protects catalog writes.
// An empty token disables the check. Email and Password, when both set,
// bootstrap an admin user account on startup.
type AdminConfig struct {
	Token    string `yaml:"token" envconfig:"ADMIN_TOKEN"`
	Email    string `yaml:"email" envconfig:"ADMIN_EMAIL"`
	Password string `yaml:"password" envconfig:"ADMIN_PASSWORD"`
}

// AuthConfig customer session tokens
type AuthConfig struct {
	JwtSecret string        `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// CloudinaryConfig image hosting credentials
type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name" envconfig:"CLOUDINARY_CLOUD_NAME"`
	ApiKey    string `yaml:"api_key" envconfig:"CLOUDINARY_API_KEY"`
	ApiSecret string `yaml:"api_secret" envconfig:"CLOUDINARY_API_SECRET"`
	Folder    string `yaml:"folder"`
}

// Enabled reports whether all credentials are present
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.ApiKey != "" && c.ApiSecret != ""
}

// RazorpayConfig payment gateway credentials
type RazorpayConfig struct {
	KeyId     string `yaml:"key_id" envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `yaml:"key_secret" envconfig:"RAZORPAY_KEY_SECRET"`
	BaseURL   string `yaml:"base_url"`
	Currency  string `yaml:"currency"`
}

// MailConfig SMTP settings for notifications
type MailConfig struct {
	Host     string `yaml:"host" envconfig:"SMTP_HOST"`
	Port     int    `yaml:"port" envconfig:"SMTP_PORT"`
	Username string `yaml:"username" envconfig:"SMTP_USER"`
	Password string `yaml:"password" envconfig:"SMTP_PASSWORD"`
	From     string `yaml:"from" envconfig:"SMTP_FROM"`
	NotifyTo string `yaml:"notify_to" envconfig:"NOTIFY_EMAIL"`
}

// Enabled reports whether SMTP delivery is configured
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.NotifyTo != ""
}

type AppConfig struct {
	System     SysConfig        `yaml:"system"`
	Web        WebConfig        `yaml:"web"`
	Database   DBConfig         `yaml:"database"`
	Logger     LogConfig        `yaml:"logger"`
	Admin      AdminConfig      `yaml:"admin"`
	Auth       AuthConfig       `yaml:"auth"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Razorpay   RazorpayConfig   `yaml:"razorpay"`
	Mail       MailConfig       `yaml:"mail"`
}

// GetUploadDir returns the directory used by the local image store
func (c *AppConfig) GetUploadDir() string {
	return path.Join(c.System.Workdir, "uploads")
}

// GetLogDir returns the log directory
func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// IsProduction reports whether the process runs in production mode
func (c *AppConfig) IsProduction() bool {
	return c.System.Env == EnvProduction
}

// DefaultAppConfig returns the built-in defaults
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "Storefront",
			Location: "Asia/Kolkata",
			Workdir:  "/var/storefront",
			Env:      EnvDevelopment,
			NodeID:   -1,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        3002,
			BodyLimit:   "10M",
			CorsOrigins: []string{"*"},
		},
		Database: DBConfig{
			Type:           "postgres",
			Host:           "localhost",
			Port:           5432,
			Name:           "saajjewels",
			User:           "postgres",
			Passwd:         "postgres",
			SslMode:        "disable",
			MaxConn:        5,
			IdleConn:       0,
			AcquireTimeout: 30 * time.Second,
			IdleTimeout:    10 * time.Second,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/storefront/logs/storefront.log",
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Cloudinary: CloudinaryConfig{
			Folder: "products",
		},
		Razorpay: RazorpayConfig{
			BaseURL:  "https://api.razorpay.com/v1",
			Currency: "INR",
		},
		Mail: MailConfig{
			Port: 587,
		},
	}
}

// LoadConfig builds the application configuration.
// Sources, each overriding the previous one: defaults, the YAML file cfile
// (skipped when empty or missing), a .env file in the working directory and
// the process environment. APP_ENV takes precedence over NODE_ENV.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envconfig.Process("", cfg); err != nil {
		return nil, errors.Wrap(err, "process environment")
	}
	// NODE_ENV is honoured for deployments that only set the Node.js name
	if _, set := os.LookupEnv("APP_ENV"); !set {
		if env := os.Getenv("NODE_ENV"); env != "" {
			cfg.System.Env = env
		}
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.System.Env == EnvProduction && cfg.Logger.Mode == "development" {
		cfg.Logger.Mode = "production"
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig for entrypoints that cannot continue without configuration
func MustLoadConfig(cfile string) *AppConfig {
	cfg, err := LoadConfig(cfile)
	if err != nil {
		panic(err)
	}
	return cfg
}
