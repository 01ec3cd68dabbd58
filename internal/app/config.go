package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/yungbote/caddie-backend/internal/data/db"
)

type Config struct {
	Env         string `env:"APP_ENV" env-default:"development"`
	Version     string `env:"APP_VERSION"`
	Port        string `env:"PORT" env-default:"8080"`
	LogMode     string `env:"LOG_MODE" env-default:"development"`
	ServiceName string `env:"OTEL_SERVICE_NAME" env-default:"caddie-api"`

	JWTSecretKey string   `env:"JWT_SECRET_KEY" env-required:"true"`
	JWTIssuer    string   `env:"JWT_ISSUER"`
	CORSOrigins  []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`

	Postgres db.Config
	Vector   VectorConfig
	Redis    RedisConfig
	Caddie   CaddieConfig
}

type VectorConfig struct {
	Provider        string        `env:"VECTOR_PROVIDER" env-default:"qdrant"`
	NamespacePrefix string        `env:"VECTOR_NAMESPACE_PREFIX" env-default:"caddie"`
	Timeout         time.Duration `env:"VECTOR_TIMEOUT" env-default:"15s"`

	QdrantURL              string `env:"QDRANT_URL" env-default:"http://localhost:6333"`
	QdrantAPIKey           string `env:"QDRANT_API_KEY"`
	QdrantCollection       string `env:"QDRANT_COLLECTION" env-default:"caddie_shots"`
	QdrantVectorDim        int    `env:"QDRANT_VECTOR_DIM" env-default:"1536"`
	QdrantCreateCollection bool   `env:"QDRANT_CREATE_COLLECTION" env-default:"true"`

	PineconeAPIKey     string `env:"PINECONE_API_KEY"`
	PineconeAPIVersion string `env:"PINECONE_API_VERSION"`
	PineconeBaseURL    string `env:"PINECONE_BASE_URL"`
	PineconeIndexName  string `env:"PINECONE_INDEX_NAME"`
	PineconeIndexHost  string `env:"PINECONE_INDEX_HOST"`
}

// RedisConfig is optional; an empty address disables the course cache.
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" env-default:"caddie"`
}

type CaddieConfig struct {
	CandidateK          int           `env:"CADDIE_CANDIDATE_K" env-default:"10"`
	SimilarityThreshold float64       `env:"CADDIE_SIMILARITY_THRESHOLD" env-default:"0.7"`
	TargetCount         int           `env:"CADDIE_TARGET_COUNT" env-default:"3"`
	FilterPolicy        string        `env:"CADDIE_FILTER_POLICY" env-default:"ranked"`
	FilterTimeout       time.Duration `env:"CADDIE_FILTER_TIMEOUT" env-default:"20s"`
	AgentMaxSteps       int           `env:"CADDIE_AGENT_MAX_STEPS" env-default:"8"`
	AgentTimeout        time.Duration `env:"CADDIE_AGENT_TIMEOUT" env-default:"60s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	cc := c.Caddie
	if cc.CandidateK <= 0 || cc.TargetCount <= 0 {
		return fmt.Errorf("CADDIE_CANDIDATE_K and CADDIE_TARGET_COUNT must be positive")
	}
	if cc.SimilarityThreshold <= 0 || cc.SimilarityThreshold > 1 {
		return fmt.Errorf("CADDIE_SIMILARITY_THRESHOLD must be in (0, 1], got %v", cc.SimilarityThreshold)
	}
	if cc.AgentMaxSteps <= 0 {
		return fmt.Errorf("CADDIE_AGENT_MAX_STEPS must be positive")
	}
	return nil
}

func (c Config) Address() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
