package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Telegram      Telegram
	Redis         Redis
	API           API
	Detail        Detail
	Jobs          Jobs
	GoogleDrive   GoogleDrive
	Session       Session
	StocksPerPage int `env:"STOCKS_PER_PAGE" envDefault:"10"`
}

type Telegram struct {
	Token            string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES" envDefault:"52428800"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	StockApi     StockApi
	AlphaVantage AlphaVantage
}

type StockApi struct {
	Url string `env:"STOCK_API_URL"`
}

type AlphaVantage struct {
	ApiKey string `env:"ALPHA_VANTAGE_API_KEY" envDefault:""`
}

type Detail struct {
	MockDataDays  int           `env:"MOCK_DATA_DAYS" envDefault:"365"`
	DefaultWindow string        `env:"DEFAULT_TIME_WINDOW" envDefault:"ALL"`
	ViewTTL       time.Duration `env:"DETAIL_VIEW_TTL" envDefault:"30m"`
}

type Jobs struct {
	SweepViewsInterval    time.Duration `env:"SWEEP_VIEWS_JOB_INTERVAL" envDefault:"5m"`
	DeleteOldFilesCrontab string        `env:"DELETE_OLD_FILES_JOB_CRONTAB" envDefault:"0 0 3 * * *"`
	Timeout               time.Duration `env:"JOB_TIMEOUT" envDefault:"5m"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

type Session struct {
	Expiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"24h"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
