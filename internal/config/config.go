package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DockerDefaults holds resource limits for the local Docker backend.
type DockerDefaults struct {
	Image          string  `yaml:"image"`
	CPULimit       float64 `yaml:"cpu_limit"`
	MemLimitMB     int     `yaml:"mem_limit_mb"`
	PidsLimit      int     `yaml:"pids_limit"`
	NetworkMode    string  `yaml:"network_mode"`
	ReadonlyRootfs bool    `yaml:"readonly_rootfs"`
}

type Config struct {
	Listen            string         `yaml:"listen"`
	APIKey            string         `yaml:"api_key"`
	Backend           string         `yaml:"backend"` // "bridge" or "docker"
	BridgeURL         string         `yaml:"bridge_url"`
	DBPath            string         `yaml:"db_path"`
	ProjectsRoot      string         `yaml:"projects_root"`
	DefaultProvider   string         `yaml:"default_provider"`
	DefaultModel      string         `yaml:"default_model"`
	SystemPromptPath  string         `yaml:"system_prompt_path"`
	SandboxTTLSeconds int            `yaml:"sandbox_ttl_seconds"`
	CommandTimeoutMs  int            `yaml:"command_timeout_ms"`
	PreviewPort       int            `yaml:"preview_port"`
	LogLevel          string         `yaml:"log_level"`
	Docker            DockerDefaults `yaml:"docker"`
}

func Load(yamlPath string) (*Config, error) {
	cfg := &Config{
		Listen:            "127.0.0.1:8080",
		Backend:           "bridge",
		BridgeURL:         "http://localhost:3001",
		DBPath:            "./werkbank.db",
		ProjectsRoot:      "./projects",
		DefaultProvider:   "claude",
		DefaultModel:      "claude-sonnet-4-20250514",
		SandboxTTLSeconds: 1800,
		CommandTimeoutMs:  300000,
		PreviewPort:       3000,
		LogLevel:          "info",
		Docker: DockerDefaults{
			Image:          "werkbank-runtime:base",
			CPULimit:       1.0,
			MemLimitMB:     1024,
			PidsLimit:      256,
			NetworkMode:    "bridge",
			ReadonlyRootfs: false,
		},
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WERKBANK_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("WERKBANK_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("WERKBANK_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("WERKBANK_BRIDGE_URL"); v != "" {
		cfg.BridgeURL = v
	}
	if v := os.Getenv("WERKBANK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WERKBANK_PROJECTS_ROOT"); v != "" {
		cfg.ProjectsRoot = v
	}
	if v := os.Getenv("WERKBANK_DEFAULT_PROVIDER"); v != "" {
		cfg.DefaultProvider = v
	}
	if v := os.Getenv("WERKBANK_DEFAULT_MODEL"); v != "" {
		cfg.DefaultModel = v
	}
	if v := os.Getenv("WERKBANK_SYSTEM_PROMPT_PATH"); v != "" {
		cfg.SystemPromptPath = v
	}
	if v := os.Getenv("WERKBANK_SANDBOX_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SandboxTTLSeconds = n
		}
	}
	if v := os.Getenv("WERKBANK_COMMAND_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CommandTimeoutMs = n
		}
	}
	if v := os.Getenv("WERKBANK_PREVIEW_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PreviewPort = n
		}
	}
	if v := os.Getenv("WERKBANK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("WERKBANK_DOCKER_IMAGE"); v != "" {
		cfg.Docker.Image = v
	}
	if v := os.Getenv("WERKBANK_DOCKER_CPU_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Docker.CPULimit = f
		}
	}
	if v := os.Getenv("WERKBANK_DOCKER_MEM_LIMIT_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Docker.MemLimitMB = n
		}
	}
	if v := os.Getenv("WERKBANK_DOCKER_PIDS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Docker.PidsLimit = n
		}
	}
	if v := os.Getenv("WERKBANK_DOCKER_NETWORK_MODE"); v != "" {
		cfg.Docker.NetworkMode = v
	}
}
