package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Vault    VaultConfig
	SMS      SMSConfig
	Fee      float64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// VaultConfig holds the bank detail encryption secret
type VaultConfig struct {
	Secret string
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	APIURL   string
	APIKey   string
	SenderID string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	fee, err := strconv.ParseFloat(getEnv("APPLICATION_FEE", "750"), 64)
	if err != nil || fee <= 0 {
		return nil, fmt.Errorf("invalid APPLICATION_FEE: %s", getEnv("APPLICATION_FEE", "750"))
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Vault:    loadVaultConfig(appMode),
		SMS:      loadSMSConfig(appMode),
		Fee:      fee,
	}

	if config.IsProd() && config.Vault.Secret == "default_vault_secret" {
		return nil, fmt.Errorf("PROD_VAULT_SECRET must be set in production")
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := envPrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "aphc_housing"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := envPrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		AccessSecret:     getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadVaultConfig loads the bank detail encryption secret based on mode
func loadVaultConfig(mode string) VaultConfig {
	prefix := envPrefix(mode)

	return VaultConfig{
		Secret: getEnv(prefix+"VAULT_SECRET", "default_vault_secret"),
	}
}

// loadSMSConfig loads SMS gateway config based on mode. An empty API key
// disables dispatch (codes are logged instead, dev behavior).
func loadSMSConfig(mode string) SMSConfig {
	prefix := envPrefix(mode)

	return SMSConfig{
		APIURL:   getEnv(prefix+"SMS_API_URL", ""),
		APIKey:   getEnv(prefix+"SMS_API_KEY", ""),
		SenderID: getEnv("SMS_SENDER_ID", "APHCGV"),
	}
}

func envPrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://housing.ap.gov.in"
	}
	return origins
}
