package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// maxEnvKeySegments bounds how many underscore segments are expanded into key variants.
const maxEnvKeySegments = 8

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches the
// standard locations relative to the working directory.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.firstExisting(configSearchPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.firstExisting(envSearchPaths(serviceName))
	}
	return resolved
}

func (r *Resolver) firstExisting(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(serviceName string) []string {
	var paths []string
	for _, prefix := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", prefix, serviceName))
	}
	return append(paths, "./config/config.yml", "./config.yml")
}

func envSearchPaths(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range []string{"./cmd/" + serviceName, "../cmd/" + serviceName, ".", "..", "../.."} {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg. The YAML file is
// read first, then the .env file is applied to the process environment, and
// finally every environment variable is bound over the file values.
// A config file that exists but cannot be parsed is an error.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under all of its nested key variants.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants returns every way of joining the underscore-separated
// segments of key with either "." or "_".
//
//	AUTH_JWT_SECRET -> auth_jwt_secret, auth_jwt.secret, auth.jwt_secret, auth.jwt.secret
func envKeyVariants(key string) []string {
	parts := strings.Split(strings.ToLower(key), "_")
	if len(parts) == 1 || len(parts) > maxEnvKeySegments {
		return []string{strings.ToLower(key)}
	}

	variants := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, len(variants)*2)
		for _, prefix := range variants {
			next = append(next, prefix+"_"+part, prefix+"."+part)
		}
		variants = next
	}
	return variants
}
