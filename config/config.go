package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	defaultAppPort      = 3000
	defaultMaxPageLimit = 100
	defaultCookieName   = "token"
	defaultDBPath       = "db/jagwell.db"
)

// Config holds the application's configuration values.
type Config struct {
	AppName      string   `json:"appname"`
	AppEnv       string   `json:"appenv"`
	AppPort      uint16   `json:"appport"`
	GinMode      string   `json:"ginmode"`
	LogLevel     string   `json:"loglevel"`
	DBDriver     string   `json:"dbdriver"`
	DBPath       string   `json:"dbpath"`
	DBHost       string   `json:"dbhost"`
	DBPort       uint16   `json:"dbport"`
	DBName       string   `json:"dbname"`
	DBUser       string   `json:"dbuser"`
	DBPass       string   `json:"-"`
	JWTSecret    string   `json:"-"`
	CookieName   string   `json:"cookiename"`
	CookieSecure bool     `json:"cookiesecure"`
	ViewsDir     string   `json:"viewsdir"`
	PublicDir    string   `json:"publicdir"`
	MaxPageLimit int      `json:"maxpagelimit"`
	CORSOrigins  []string `json:"corsorigins"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment (optionally from a .env file) once and
// returns the shared Config.
func LoadConfig() *Config {
	once.Do(func() {
		config = Load()
	})
	return config
}

// ResetConfigForTest drops the cached Config so the next LoadConfig call
// re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// Load reads the configuration from the environment without caching it.
// A missing .env file is not an error; variables may come from the process environment.
func Load() *Config {
	_ = godotenv.Load()

	appPort := parseUint16(firstNonEmpty(os.Getenv("APPPORT"), os.Getenv("PORT")), defaultAppPort)
	dbPort := parseUint16(os.Getenv("DBPORT"), 0)
	maxLimit, err := strconv.Atoi(os.Getenv("MAXPAGELIMIT"))
	if err != nil || maxLimit <= 0 {
		maxLimit = defaultMaxPageLimit
	}

	cfg := &Config{
		AppName:      firstNonEmpty(os.Getenv("APPNAME"), "JagWell"),
		AppEnv:       firstNonEmpty(os.Getenv("APPENV"), "development"),
		AppPort:      appPort,
		GinMode:      firstNonEmpty(os.Getenv("GINMODE"), "debug"),
		LogLevel:     firstNonEmpty(os.Getenv("LOGLEVEL"), "info"),
		DBDriver:     strings.ToLower(firstNonEmpty(os.Getenv("DBDRIVER"), DriverSQLite)),
		DBPath:       firstNonEmpty(os.Getenv("DBPATH"), defaultDBPath),
		DBHost:       os.Getenv("DBHOST"),
		DBPort:       dbPort,
		DBName:       os.Getenv("DBNAME"),
		DBUser:       os.Getenv("DBUSER"),
		DBPass:       os.Getenv("DBPASS"),
		JWTSecret:    os.Getenv("JWTSECRET"),
		CookieName:   firstNonEmpty(os.Getenv("COOKIENAME"), defaultCookieName),
		CookieSecure: os.Getenv("COOKIESECURE") == "true",
		ViewsDir:     firstNonEmpty(os.Getenv("VIEWSDIR"), "views"),
		PublicDir:    firstNonEmpty(os.Getenv("PUBLICDIR"), "public"),
		MaxPageLimit: maxLimit,
		CORSOrigins:  splitList(os.Getenv("CORSORIGINS")),
	}
	return cfg
}

// IsTest reports whether the app runs under APPENV=test.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// IsProduction reports whether the app runs under APPENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN builds the data source name for the configured driver.
func (c *Config) DSN() (string, error) {
	switch c.DBDriver {
	case DriverSQLite:
		return c.DBPath, nil
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&clientFoundRows=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName), nil
	default:
		return "", fmt.Errorf("unsupported DBDRIVER %q", c.DBDriver)
	}
}

// ConnectDatabase opens the connection pool for the configured driver.
// Under APPENV=test it always opens a private in-memory SQLite database.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true}

	if cfg.IsTest() {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
		db, err := gorm.Open(sqlite.Open("file::memory:"), gormCfg)
		if err != nil {
			return nil, err
		}
		// Every pooled connection to ":memory:" is a separate database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == DriverSQLite {
		// SQLite allows a single writer; serialize through one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func parseUint16(s string, fallback uint16) uint16 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fallback
	}
	return uint16(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
