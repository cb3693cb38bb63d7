// ABOUTME: Layered configuration: defaults, config file, .env files, QREADER_* environment and flags.
// ABOUTME: Also resolves the XDG data directory holding the database and installed packages.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. QREADER_PORT.
const EnvPrefix = "QREADER"

const appName = "qreader"

// Keys shared by flags, files and environment.
const (
	KeyPort        = "port"
	KeyDB          = "db"
	KeyPackagesDir = "packages-dir"
	KeyToken       = "token"
	KeyLogLevel    = "log-level"
	KeyLogFile     = "log-file"
	KeyMaxPayload  = "max-payload"
	KeyOpenAIModel = "openai-model"
)

// Config is the resolved runtime configuration.
type Config struct {
	Port        string
	DBPath      string
	PackagesDir string
	// Token, when set, is required as a bearer token on every API request.
	Token           string
	LogLevel        string
	LogFile         string
	MaxPayloadBytes int64
	OpenAIKey       string
	OpenAIModel     string
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	dataDir := DataDir()

	v.SetDefault(KeyPort, "9000")
	v.SetDefault(KeyDB, filepath.Join(dataDir, appName+".db"))
	v.SetDefault(KeyPackagesDir, filepath.Join(dataDir, "packages"))
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyMaxPayload, 64*1024)
	v.SetDefault(KeyOpenAIModel, "gpt-4o-mini")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(configHome(), appName))
	return v
}

// Load reads the optional config file and resolves v into a Config.
// A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	dbPath, err := ValidatePath(v.GetString(KeyDB))
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	packagesDir, err := ValidatePath(v.GetString(KeyPackagesDir))
	if err != nil {
		return nil, fmt.Errorf("packages directory: %w", err)
	}

	maxPayload := v.GetInt64(KeyMaxPayload)
	if maxPayload <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", KeyMaxPayload, maxPayload)
	}

	return &Config{
		Port:            v.GetString(KeyPort),
		DBPath:          dbPath,
		PackagesDir:     packagesDir,
		Token:           v.GetString(KeyToken),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFile:         v.GetString(KeyLogFile),
		MaxPayloadBytes: maxPayload,
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     v.GetString(KeyOpenAIModel),
	}, nil
}

// LoadDotEnv loads .env from the working directory, then from the user config
// directory. Variables already set in the environment win.
func LoadDotEnv() {
	paths := []string{".env", filepath.Join(configHome(), appName, ".env")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			// godotenv never overrides existing variables
			_ = godotenv.Load(p)
		}
	}
}

// ValidatePath validates and cleans a database or directory path.
func ValidatePath(path string) (string, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if cleanPath == ":memory:" {
		return cleanPath, nil
	}
	cleanPath = filepath.Clean(cleanPath)

	// Reject root-like paths
	if cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("path cannot be '.' or '/'")
	}

	// Windows: reject bare drive letters (e.g., "C:", "D:")
	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("path cannot be a bare drive letter")
	}

	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return "", fmt.Errorf("path cannot contain '..'")
		}
	}

	lowerPath := strings.ToLower(cleanPath)
	for _, pattern := range []string{".git", ".svn", "node_modules", "credentials", "secret"} {
		if strings.Contains(lowerPath, pattern) {
			return "", fmt.Errorf("path cannot contain '%s'", pattern)
		}
	}

	return cleanPath, nil
}

// DataDir returns the per-user data directory following the XDG Base
// Directory layout, or the platform equivalent on Windows. It falls back to
// ./.qreader when no home directory is available.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil || homeDir == "" || homeDir == "/" {
			return "." + appName
		}

		if runtime.GOOS == "windows" {
			dataHome = os.Getenv("LOCALAPPDATA")
			if dataHome == "" {
				dataHome = filepath.Join(homeDir, "AppData", "Local")
			}
		} else {
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
	}
	return filepath.Join(dataHome, appName)
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
