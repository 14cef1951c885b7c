package bootstrap

import (
	"github.com/locvowork/attrition_datahub/internal/config"
	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/logger"
)

// LoadEnvironment loads the env config and initialises the global logger.
// Both binaries call it first.
func LoadEnvironment() error {
	if err := config.LoadEnvConfig(); err != nil {
		return err
	}
	logger.InitLogging(logger.Options{
		FilePath: config.DefaultEnvConfig.LOG_FILE_PATH,
		Level:    config.DefaultEnvConfig.LOG_LEVEL,
		Format:   config.DefaultEnvConfig.LOG_FORMAT,
	})
	return nil
}

func SQLConfig() database.Config {
	env := config.DefaultEnvConfig
	return database.Config{
		Driver:          env.SQL_DRIVER,
		Host:            env.SQL_HOST,
		Port:            env.SQL_PORT,
		User:            env.SQL_USER,
		Password:        env.SQL_PASSWORD,
		DBName:          env.SQL_DATABASE,
		SSLMode:         env.SQL_SSL_MODE,
		MaxOpenConns:    env.SQL_MAX_OPEN_CONNS,
		MaxIdleConns:    env.SQL_MAX_IDLE_CONNS,
		ConnMaxLifetime: env.SQL_CONN_MAX_LIFETIME,
	}
}

func MongoConfig() database.MongoConfig {
	env := config.DefaultEnvConfig
	return database.MongoConfig{
		URI:        env.MONGODB_URI,
		Host:       env.MONGODB_HOST,
		Port:       env.MONGODB_PORT,
		Database:   env.MONGODB_DATABASE,
		User:       env.MONGODB_USER,
		Password:   env.MONGODB_PASSWORD,
		AuthSource: env.MONGODB_AUTH_SOURCE,
		Timeout:    env.MONGODB_TIMEOUT,
	}
}

// SearchClient returns the search mirror client, or nil when ELASTIC_URL is unset.
func SearchClient() (*database.ElasticSearchClient, error) {
	env := config.DefaultEnvConfig
	if env.ELASTIC_URL == "" {
		return nil, nil
	}
	return database.NewElasticSearchClient(env.ELASTIC_URL, env.ELASTIC_INDEX)
}
