package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DatabaseConfig holds relational database connection settings. Driver selects the
// persistence backend for the whole service.
type DatabaseConfig struct {
	Driver             string `koanf:"driver"`
	Host               string `koanf:"host"`
	Port               string `koanf:"port"`
	User               string `koanf:"user"`
	Password           string `koanf:"password"`
	Name               string `koanf:"name"`
	SSLMode            string `koanf:"sslmode"`
	MaxOpenConns       int    `koanf:"max_open_conns"`
	MaxIdleConns       int    `koanf:"max_idle_conns"`
	ConnMaxLifetimeSec int    `koanf:"conn_max_lifetime_sec"`
}

// MongoConfig holds MongoDB connection settings used when Database.Driver is "mongo".
type MongoConfig struct {
	URL      string `koanf:"url"`
	Database string `koanf:"database"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// StorageConfig selects where uploaded files are kept.
type StorageConfig struct {
	Driver    string `koanf:"driver"`
	UploadDir string `koanf:"upload_dir"`
}

type AuthConfig struct {
	SecretKey          string `koanf:"secret_key"`
	Algorithm          string `koanf:"algorithm"`
	AccessTokenMinutes int    `koanf:"access_token_minutes"`
}

// GeminiConfig holds Google Generative Language API settings. An empty APIKey switches
// the service to its local embedder and disables answer generation.
type GeminiConfig struct {
	APIKey             string `koanf:"api_key"`
	Model              string `koanf:"model"`
	EmbeddingModel     string `koanf:"embedding_model"`
	EmbeddingDimension int    `koanf:"embedding_dimension"`
	BaseURL            string `koanf:"base_url"`
}

type VectorConfig struct {
	Driver         string `koanf:"driver"`
	PineconeAPIKey string `koanf:"pinecone_api_key"`
	IndexName      string `koanf:"index_name"`
	Host           string `koanf:"host"`
	Namespace      string `koanf:"namespace"`
	LocalPath      string `koanf:"local_path"`
}

type IndexingConfig struct {
	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`
	MaxResults   int `koanf:"max_results"`
}

// AppConfig is the centralized configuration struct for the application.
type AppConfig struct {
	AppHost     string         `koanf:"app_host"`
	Port        string         `koanf:"port"`
	LogLevel    string         `koanf:"log_level"`
	Timezone    string         `koanf:"timezone"`
	CORSOrigins string         `koanf:"cors_origins"`
	Database    DatabaseConfig `koanf:"database"`
	Mongo       MongoConfig    `koanf:"mongo"`
	Storage     StorageConfig  `koanf:"storage"`
	MinIO       MinIOConfig    `koanf:"minio"`
	Auth        AuthConfig     `koanf:"auth"`
	Gemini      GeminiConfig   `koanf:"gemini"`
	Vector      VectorConfig   `koanf:"vector"`
	Indexing    IndexingConfig `koanf:"indexing"`
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConfigFileEnv names the environment variable pointing at an optional YAML or JSON config file.
const ConfigFileEnv = "BEECOK_CONFIG"

// envKeys maps the flat environment variable names to koanf keys. Variables not listed
// here are ignored.
var envKeys = map[string]string{
	"APP_HOST":                    "app_host",
	"PORT":                        "port",
	"LOG_LEVEL":                   "log_level",
	"TZ_NAME":                     "timezone",
	"CORS_ORIGINS":                "cors_origins",
	"DB_DRIVER":                   "database.driver",
	"DB_HOST":                     "database.host",
	"DB_PORT":                     "database.port",
	"DB_USER":                     "database.user",
	"DB_PASSWORD":                 "database.password",
	"DB_NAME":                     "database.name",
	"DB_SSLMODE":                  "database.sslmode",
	"DB_MAX_OPEN_CONNS":           "database.max_open_conns",
	"DB_MAX_IDLE_CONNS":           "database.max_idle_conns",
	"DB_CONN_MAX_LIFETIME_SEC":    "database.conn_max_lifetime_sec",
	"MONGODB_URL":                 "mongo.url",
	"MONGODB_DATABASE":            "mongo.database",
	"STORAGE_DRIVER":              "storage.driver",
	"UPLOAD_DIR":                  "storage.upload_dir",
	"MINIO_ENDPOINT":              "minio.endpoint",
	"MINIO_ACCESS_KEY":            "minio.access_key",
	"MINIO_SECRET_KEY":            "minio.secret_key",
	"MINIO_BUCKET":                "minio.bucket",
	"MINIO_USE_SSL":               "minio.use_ssl",
	"JWT_SECRET_KEY":              "auth.secret_key",
	"JWT_ALGORITHM":               "auth.algorithm",
	"ACCESS_TOKEN_EXPIRE_MINUTES": "auth.access_token_minutes",
	"GOOGLE_API_KEY":              "gemini.api_key",
	"GEMINI_MODEL":                "gemini.model",
	"EMBEDDING_MODEL":             "gemini.embedding_model",
	"EMBEDDING_DIMENSION":         "gemini.embedding_dimension",
	"GEMINI_BASE_URL":             "gemini.base_url",
	"VECTOR_DRIVER":               "vector.driver",
	"PINECONE_API_KEY":            "vector.pinecone_api_key",
	"PINECONE_INDEX_NAME":         "vector.index_name",
	"PINECONE_HOST":               "vector.host",
	"PINECONE_NAMESPACE":          "vector.namespace",
	"LOCAL_INDEX_PATH":            "vector.local_path",
	"CHUNK_SIZE":                  "indexing.chunk_size",
	"CHUNK_OVERLAP":               "indexing.chunk_overlap",
	"MAX_RESULTS":                 "indexing.max_results",
}

var defaults = map[string]any{
	"app_host":                       "localhost:8000",
	"port":                           "8000",
	"log_level":                      "info",
	"timezone":                       "UTC",
	"cors_origins":                   "http://localhost:3000",
	"database.driver":                "postgres",
	"database.port":                  "5432",
	"database.sslmode":               "disable",
	"database.max_open_conns":        10,
	"database.max_idle_conns":        5,
	"database.conn_max_lifetime_sec": 300,
	"mongo.url":                      "mongodb://localhost:27017",
	"mongo.database":                 "beecok",
	"storage.driver":                 "local",
	"storage.upload_dir":             "uploads",
	"minio.use_ssl":                  false,
	"auth.algorithm":                 "HS256",
	"auth.access_token_minutes":      30,
	"gemini.model":                   "gemini-2.0-flash-exp",
	"gemini.embedding_model":         "text-embedding-004",
	"gemini.embedding_dimension":     768,
	"gemini.base_url":                "https://generativelanguage.googleapis.com/v1beta",
	"vector.driver":                  "local",
	"vector.index_name":              "semantic-search-index",
	"indexing.chunk_size":            500,
	"indexing.chunk_overlap":         50,
	"indexing.max_results":           10,
}

// Load reads configuration with precedence defaults < config file < environment.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	return nil
}

func validate(cfg *AppConfig) error {
	switch cfg.Database.Driver {
	case "postgres", "mongo", "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}
	switch cfg.Storage.Driver {
	case "minio", "local":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	switch cfg.Vector.Driver {
	case "pinecone", "local":
	default:
		return fmt.Errorf("unknown VECTOR_DRIVER %q", cfg.Vector.Driver)
	}
	if cfg.Auth.SecretKey == "" && cfg.Database.Driver != "memory" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if cfg.Auth.Algorithm != "HS256" {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", cfg.Auth.Algorithm)
	}
	if cfg.Indexing.ChunkSize <= 0 {
		return errors.New("CHUNK_SIZE must be positive")
	}
	if cfg.Indexing.ChunkOverlap < 0 || cfg.Indexing.ChunkOverlap >= cfg.Indexing.ChunkSize {
		return errors.New("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if cfg.Vector.Driver == "pinecone" && cfg.Vector.PineconeAPIKey == "" {
		return errors.New("PINECONE_API_KEY is required for the pinecone driver")
	}
	return nil
}
