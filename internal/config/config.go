package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/haulbuddy/service-marketplace/internal/common/database"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// StorageConfig holds object storage settings for vehicle photos.
type StorageConfig struct {
	Bucket          string
	CredentialsFile string
}

// ServiceConfig holds all configuration for the marketplace service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      database.PostgresConfig
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
	StorageConfig StorageConfig
}

// Load reads configuration from HAUL_-prefixed environment variables,
// applying development defaults where unset.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("HAUL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "haulbuddy")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_group_prefix", "haulbuddy.")
	v.SetDefault("storage_bucket", "haulbuddy-dev.appspot.com")

	jwtSecret := v.GetString("jwt_secret")
	if jwtSecret == "" {
		if v.GetString("app_env") != "development" {
			return nil, fmt.Errorf("HAUL_JWT_SECRET is required outside development")
		}
		jwtSecret = "dev-only-secret"
	}

	port := v.GetString("service_port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("app_env"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		JWTConfig: JWTConfig{Secret: jwtSecret},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("kafka_brokers"), ","),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		StorageConfig: StorageConfig{
			Bucket:          v.GetString("storage_bucket"),
			CredentialsFile: v.GetString("storage_credentials_file"),
		},
	}, nil
}
