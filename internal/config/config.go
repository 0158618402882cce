package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // в минутах
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
	} `yaml:"email"`

	Generation struct {
		CompanyName string `yaml:"company_name"` // от чьего имени составляются отклики
	} `yaml:"generation"`

	Discovery struct {
		PreferredDomains []string `yaml:"preferred_domains"` // ключевые слова тендерных доменов
		RescanMinutes    int      `yaml:"rescan_minutes"`    // период фонового пересканирования (0 = выключено)
		PollInitialMS    int      `yaml:"poll_initial_ms"`   // начальная задержка опроса статуса скана
		PollMaxWaitMS    int      `yaml:"poll_max_wait_ms"`  // общий лимит ожидания скана
	} `yaml:"discovery"`

	Humanizer struct {
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		MaxAIPercentage int    `yaml:"max_ai_percentage"`
		MaxAttempts     int    `yaml:"max_attempts"`
	} `yaml:"humanizer"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`      // Max file size in bytes
		AllowedTypes []string `yaml:"allowed_types"` // Allowed MIME types
	} `yaml:"upload"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	serverEnv := os.Getenv("SERVER_ENV")
	portStr := os.Getenv("SERVER_PORT")
	jwtSecret := os.Getenv("JWT_SECRET")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("✅ Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = serverEnv
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.JWT.Secret = jwtSecret
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@bidpilot.com"

	cfg.Humanizer.BaseURL = os.Getenv("HUMANIZER_URL")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

// applyDefaults заполняет нулевые поля разумными значениями по умолчанию.
func applyDefaults(cfg *Config) {
	if cfg.Generation.CompanyName == "" {
		cfg.Generation.CompanyName = "BidPilot"
	}
	if len(cfg.Discovery.PreferredDomains) == 0 {
		cfg.Discovery.PreferredDomains = []string{"IT", "Construction", "Medical", "Logistics"}
	}
	if cfg.Discovery.PollInitialMS == 0 {
		cfg.Discovery.PollInitialMS = 500
	}
	if cfg.Discovery.PollMaxWaitMS == 0 {
		cfg.Discovery.PollMaxWaitMS = 30000
	}
	if cfg.Humanizer.TimeoutSeconds == 0 {
		cfg.Humanizer.TimeoutSeconds = 120
	}
	if cfg.Humanizer.MaxAIPercentage == 0 {
		cfg.Humanizer.MaxAIPercentage = 10
	}
	if cfg.Humanizer.MaxAttempts == 0 {
		cfg.Humanizer.MaxAttempts = 4
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		}
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
