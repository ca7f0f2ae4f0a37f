package entities

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultManifest is the dependency manifest tracked when none is configured.
	DefaultManifest = "Podfile"

	dotEnvFile = ".env"
)

// Settings is the top-level configuration for mrhelper.
type Settings struct {
	GitLab     GitLabSettings `yaml:"gitlab"`
	Manifest   string         `yaml:"manifest"`
	MaxWorkers int            `yaml:"max_workers"` // 0 means one worker per dependency
	Feishu     FeishuSettings `yaml:"feishu"`
}

// GitLabSettings describes the GitLab instance hosting every repository.
type GitLabSettings struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"` // Inline, ${ENV_VAR}, or file path
}

// FeishuSettings configures the chat bot notified when a merge request is created.
type FeishuSettings struct {
	Webhook     string       `yaml:"webhook"`
	SendMessage bool         `yaml:"send_message"`
	SelfOpenID  string       `yaml:"self_open_id"`
	Users       []FeishuUser `yaml:"users"`
}

// FeishuUser is a teammate that can be mentioned in the notification.
type FeishuUser struct {
	Name            string `yaml:"name"`
	OpenID          string `yaml:"open_id"`
	DefaultSelected bool   `yaml:"default_selected"`
}

// ErrConfigExists is returned when a starter config would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

//go:embed starter_config.yaml
var starterConfig []byte

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, loading a sibling .env
// file first so that ${VAR} placeholders can refer to it.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	loadDotEnv(filepath.Join(filepath.Dir(path), dotEnvFile))

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.GitLab.Token = resolveToken(settings.GitLab.Token)
	settings.Feishu.Webhook = expandEnv(settings.Feishu.Webhook)
	if settings.Manifest == "" {
		settings.Manifest = DefaultManifest
	}

	if validateErr := validate(&settings); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".mrhelper.yaml",
		".mrhelper.yml",
		"mrhelper.yaml",
		"mrhelper.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// WriteStarterConfig writes a commented example configuration to path. An
// existing file is left untouched and reported as ErrConfigExists.
func WriteStarterConfig(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer file.Close()

	if _, writeErr := file.Write(starterConfig); writeErr != nil {
		return fmt.Errorf("failed to write %q: %w", path, writeErr)
	}
	return nil
}

// FindUser returns the configured Feishu user with the given name.
func (s *Settings) FindUser(name string) (FeishuUser, bool) {
	for _, user := range s.Feishu.Users {
		if user.Name == name {
			return user, true
		}
	}
	return FeishuUser{}, false
}

// DefaultMentions returns the open ids of users selected by default.
func (s *Settings) DefaultMentions() []string {
	var ids []string
	for _, user := range s.Feishu.Users {
		if user.DefaultSelected && user.OpenID != "" {
			ids = append(ids, user.OpenID)
		}
	}
	return ids
}

func loadDotEnv(path string) {
	if _, statErr := os.Stat(path); statErr != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warnf("Failed to load %q: %v", path, err)
		return
	}
	logger.Debugf("Loaded environment from %q", path)
}

// expandEnv replaces ${ENV_VAR} references with their values.
func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := expandEnv(raw)

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(settings *Settings) error {
	if settings.GitLab.URL == "" {
		return errors.New("gitlab.url is required")
	}
	if settings.GitLab.Token == "" {
		return errors.New("gitlab.token is required (set inline, via ${ENV_VAR}, or as file path)")
	}
	if settings.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must not be negative, got %d", settings.MaxWorkers)
	}
	if settings.Feishu.SendMessage && settings.Feishu.Webhook == "" {
		return errors.New("feishu.webhook is required when feishu.send_message is enabled")
	}
	return nil
}
