package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GmailCredentialsPath string `yaml:"gmail_credentials_path"`
	GmailTokenPath       string `yaml:"gmail_token_path"`
	FetchSinceHours      int    `yaml:"fetch_since_hours"`
	FetchLimit           int    `yaml:"fetch_limit"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	DataDir          string `yaml:"data_dir"`
	DBPath           string `yaml:"db_path"`
	ApplicationsPath string `yaml:"applications_path"`
	ExportPath       string `yaml:"export_path"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
	WatchSchedule  string `yaml:"watch_schedule"`
	Timezone       string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.GmailCredentialsPath, "GMAIL_CREDENTIALS_PATH")
	envOverride(&cfg.GmailTokenPath, "GMAIL_TOKEN_PATH")
	envOverrideInt(&cfg.FetchSinceHours, "FETCH_SINCE_HOURS")
	envOverrideInt(&cfg.FetchLimit, "FETCH_LIMIT")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.DataDir, "DATA_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ApplicationsPath, "APPLICATIONS_PATH")
	envOverride(&cfg.ExportPath, "EXPORT_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.WatchSchedule, "WATCH_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.GmailCredentialsPath == "" {
		cfg.GmailCredentialsPath = "config/gmail_credentials.json"
	}
	if cfg.GmailTokenPath == "" {
		cfg.GmailTokenPath = "config/token.json"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = cfg.DataDir + "/jobtracker.db"
	}
	if cfg.ApplicationsPath == "" {
		cfg.ApplicationsPath = cfg.DataDir + "/job_applications.json"
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = cfg.DataDir + "/job_applications.csv"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.FetchSinceHours < 0 {
		log.Fatalf("invalid fetch_since_hours '%d': must be >= 0", cfg.FetchSinceHours)
	}
	if cfg.FetchLimit < 0 {
		log.Fatalf("invalid fetch_limit '%d': must be >= 0", cfg.FetchLimit)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.SlackChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("slack_bot_token is required when slack_channel_id is set")
	}

	return cfg
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
