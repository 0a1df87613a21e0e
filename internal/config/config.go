package config

import (
	"image"
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-viewer/internal/domain"
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:4173",
	"http://localhost:3000",
}

var _ domain.Config = (*AppConfig)(nil)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	LogLevel        string
	DownloadDir     string
	MaxDownloadSize int64
	DownloadTimeout time.Duration
	ViewportWidth   int
	ViewportHeight  int
	RenderDPI       float64
	RenderMode      domain.RenderMode
	AllowedOrigins  []string
	SupabaseURL     string
	SupabaseKey     string
	StartDocument   string
	StartZoom       int
	StartPosition   image.Point
}

// NewConfig creates a new configuration instance with default values
func NewConfig() *AppConfig {
	return &AppConfig{
		// PaaS hosts provide the listening port via PORT.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		DownloadDir:     getEnvOrDefault("DOWNLOAD_DIR", os.TempDir()),
		MaxDownloadSize: getEnvInt64OrDefault("MAX_DOWNLOAD_SIZE", 50*1024*1024), // 50MB default
		DownloadTimeout: getEnvDurationOrDefault("DOWNLOAD_TIMEOUT", 60*time.Second),
		ViewportWidth:   getEnvIntOrDefault("VIEWPORT_WIDTH", 800),
		ViewportHeight:  getEnvIntOrDefault("VIEWPORT_HEIGHT", 1000),
		RenderDPI:       getEnvFloatOrDefault("RENDER_DPI", 72),
		RenderMode:      getEnvRenderModeOrDefault("RENDER_MODE", domain.RenderModeDisplay),
		AllowedOrigins:  getEnvListOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins),
		SupabaseURL:     getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:     getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		StartDocument:   getEnvOrDefault("START_DOCUMENT", ""),
		StartZoom:       getEnvIntOrDefault("START_ZOOM", 1),
		StartPosition: image.Pt(
			getEnvIntOrDefault("START_POSITION_X", 0),
			getEnvIntOrDefault("START_POSITION_Y", 0),
		),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetDownloadDir returns the directory remote documents are fetched into
func (c *AppConfig) GetDownloadDir() string {
	return c.DownloadDir
}

// GetMaxDownloadSize returns the maximum accepted document size in bytes
func (c *AppConfig) GetMaxDownloadSize() int64 {
	return c.MaxDownloadSize
}

// GetDownloadTimeout returns the per-download timeout; zero disables it
func (c *AppConfig) GetDownloadTimeout() time.Duration {
	return c.DownloadTimeout
}

// GetViewportSize returns the default viewport for new viewers
func (c *AppConfig) GetViewportSize() (width, height int) {
	return c.ViewportWidth, c.ViewportHeight
}

// GetRenderDPI returns the base rasterization DPI
func (c *AppConfig) GetRenderDPI() float64 {
	return c.RenderDPI
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetStartDocument returns the document the default viewer opens at startup
func (c *AppConfig) GetStartDocument() string {
	return c.StartDocument
}

// GetStartZoom returns the default viewer's initial zoom
func (c *AppConfig) GetStartZoom() int {
	return c.StartZoom
}

// GetStartPosition returns the default viewer's initial pan position
func (c *AppConfig) GetStartPosition() image.Point {
	return c.StartPosition
}

// GetRenderMode returns the quality new viewers draw with
func (c *AppConfig) GetRenderMode() domain.RenderMode {
	return c.RenderMode
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvRenderModeOrDefault(key string, defaultValue domain.RenderMode) domain.RenderMode {
	if value := os.Getenv(key); value != "" {
		if mode, err := domain.ParseRenderMode(value); err == nil {
			return mode
		}
	}
	return defaultValue
}
