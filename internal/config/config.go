package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// relational store config
	SQL_DRIVER            string
	SQL_HOST              string
	SQL_PORT              int
	SQL_USER              string
	SQL_PASSWORD          string
	SQL_DATABASE          string
	SQL_SSL_MODE          string
	SQL_CONN_MAX_LIFETIME time.Duration
	SQL_MAX_IDLE_CONNS    int
	SQL_MAX_OPEN_CONNS    int
	// document store config
	MONGODB_URI         string
	MONGODB_HOST        string
	MONGODB_PORT        int
	MONGODB_DATABASE    string
	MONGODB_USER        string
	MONGODB_PASSWORD    string
	MONGODB_AUTH_SOURCE string
	MONGODB_TIMEOUT     time.Duration
	// import config
	CSV_FILE_PATH       string
	IMPORT_PROFILE_PATH string
	// search mirror config
	ELASTIC_URL   string
	ELASTIC_INDEX string
	// server config
	APP_PORT string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	LOG_FORMAT    string
}

// LoadEnvConfig reads .env (when present) and the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		SQL_DRIVER:            getEnvString("SQL_DRIVER", "mysql"),
		SQL_HOST:              getEnvString("SQL_HOST", "localhost"),
		SQL_PORT:              getEnvInt("SQL_PORT", 3306),
		SQL_USER:              getEnvString("SQL_USER", "root"),
		SQL_PASSWORD:          getEnvString("SQL_PASSWORD", "password"),
		SQL_DATABASE:          getEnvString("SQL_DATABASE", "hr_attrition_db"),
		SQL_SSL_MODE:          getEnvString("SQL_SSL_MODE", "disable"),
		SQL_CONN_MAX_LIFETIME: getEnvDuration("SQL_CONN_MAX_LIFETIME", 20*time.Minute),
		SQL_MAX_IDLE_CONNS:    getEnvInt("SQL_MAX_IDLE_CONNS", 5),
		SQL_MAX_OPEN_CONNS:    getEnvInt("SQL_MAX_OPEN_CONNS", 10),
		MONGODB_URI:           getEnvString("MONGODB_URI", ""),
		MONGODB_HOST:          getEnvString("MONGODB_HOST", "localhost"),
		MONGODB_PORT:          getEnvInt("MONGODB_PORT", 27017),
		MONGODB_DATABASE:      getEnvString("MONGODB_DATABASE", "hr_attrition_nosql"),
		MONGODB_USER:          getEnvString("MONGODB_USER", ""),
		MONGODB_PASSWORD:      getEnvString("MONGODB_PASSWORD", ""),
		MONGODB_AUTH_SOURCE:   getEnvString("MONGODB_AUTH_SOURCE", "admin"),
		MONGODB_TIMEOUT:       getEnvDuration("MONGODB_TIMEOUT", 10*time.Second),
		CSV_FILE_PATH:         getEnvString("CSV_FILE_PATH", "hr_employee_attrition.csv"),
		IMPORT_PROFILE_PATH:   getEnvString("IMPORT_PROFILE_PATH", ""),
		ELASTIC_URL:           getEnvString("ELASTIC_URL", ""),
		ELASTIC_INDEX:         getEnvString("ELASTIC_INDEX", "employees"),
		APP_PORT:              getEnvString("APP_PORT", "8080"),
		LOG_FILE_PATH:         getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:             getEnvString("LOG_LEVEL", "info"),
		LOG_FORMAT:            getEnvString("LOG_FORMAT", "json"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
