package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe la configuration de l'application, chargée depuis l'environnement
type Config struct {
	// Base de données
	DBDriver   string // "sqlite" ou "postgres"
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Sources de données
	DataDirs       []string
	TikTokPatterns []string
	ShopeePatterns []string

	// Normalisation
	Timezone          string
	BlacklistKeywords []string
	ExcludedStatuses  []string

	// Garde-fous de reconstruction
	LossThreshold float64 // baisse relative au-delà de laquelle on alerte
	GainThreshold float64 // hausse relative au-delà de laquelle on avertit

	// Serveur HTTP et cache
	HTTPAddr string
	CacheTTL time.Duration
}

// DefaultBlacklistKeywords mots-clés produits hors-périmètre (électronique et accessoires)
var DefaultBlacklistKeywords = []string{
	"apple", "iphone", "ipad", "macbook", "airpods", "apple watch",
	"samsung", "galaxy", "case", "charger", "cable", "headphone",
	"earphone", "earbuds", "electronics", "accessories", "adapter",
	"tempered glass", "screen protector", "phone cover", "phone case",
	"wireless charger", "power bank", "usb", "lightning", "type-c",
}

// DefaultExcludedStatuses statuts de commande exclus des agrégats (annulées / impayées)
var DefaultExcludedStatuses = []string{
	"cancelled", "canceled", "unpaid", "ยกเลิกแล้ว", "ที่ยกเลิก",
}

// Load charge la configuration depuis .env puis l'environnement
func Load() (*Config, error) {
	// .env optionnel: l'environnement réel a priorité
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		SQLitePath: getEnv("SQLITE_PATH", "dashboard.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "dplus"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "dplus"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DataDirs:       getEnvList("DATA_DIRS", []string{"uploads"}),
		TikTokPatterns: getEnvList("TIKTOK_PATTERNS", []string{"ทั้งหมด คำสั่งซื้อ-*.csv"}),
		ShopeePatterns: getEnvList("SHOPEE_PATTERNS", []string{"Order.all.*.xlsx"}),

		Timezone:          getEnv("TIMEZONE", "Asia/Bangkok"),
		BlacklistKeywords: getEnvList("BLACKLIST_KEYWORDS", DefaultBlacklistKeywords),
		ExcludedStatuses:  getEnvList("EXCLUDED_STATUSES", DefaultExcludedStatuses),

		LossThreshold: getEnvFloat("LOSS_THRESHOLD", 0.10),
		GainThreshold: getEnvFloat("GAIN_THRESHOLD", 0.50),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_MINUTES", 5)) * time.Minute,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate vérifie la cohérence de la configuration
func (c *Config) validate() error {
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER: %q", c.DBDriver)
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH cannot be empty with sqlite driver")
	}
	if len(c.DataDirs) == 0 {
		return fmt.Errorf("DATA_DIRS cannot be empty")
	}
	if c.LossThreshold < 0 || c.LossThreshold > 1 {
		return fmt.Errorf("LOSS_THRESHOLD must be in [0,1], got %g", c.LossThreshold)
	}
	if c.GainThreshold < 0 {
		return fmt.Errorf("GAIN_THRESHOLD cannot be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location retourne le fuseau horaire de normalisation
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PostgresDSN construit la connection string lib/pq
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt récupère une variable entière avec fallback
func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvFloat récupère une variable flottante avec fallback
func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvList récupère une liste séparée par des virgules avec fallback
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
