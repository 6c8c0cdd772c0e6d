package config

import (
	"time"
)

// AgentConfig Agent服务配置（对外导出）
type AgentConfig struct {
	Agent struct {
		General struct {
			Name     string `yaml:"name"`
			LogLevel string `yaml:"log_level"`
			Env      string `yaml:"env"`
		} `yaml:"general"`
		Oracle struct {
			BaseURL     string        `yaml:"base_url"`
			APIKey      string        `yaml:"api_key"`
			Model       string        `yaml:"model"`
			Timeout     time.Duration `yaml:"timeout"`
			MaxAttempts int           `yaml:"max_attempts"`
			RetryDelay  time.Duration `yaml:"retry_delay"`
		} `yaml:"oracle"`
		Storage struct {
			Database struct {
				Type string `yaml:"type"`
				DSN  string `yaml:"dsn"`
			} `yaml:"database"`
		} `yaml:"storage"`
		LTM struct {
			Enabled bool   `yaml:"enabled"`
			File    string `yaml:"file"`
		} `yaml:"ltm"`
		Cron struct {
			Enabled bool   `yaml:"enabled"`
			Expr    string `yaml:"expr"`
		} `yaml:"cron"`
		Server struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"server"`
	} `yaml:"agent"`
}

// GetDatabaseType 获取数据库类型
func (c *AgentConfig) GetDatabaseType() string {
	return c.Agent.Storage.Database.Type
}

// GetDatabaseDSN 获取数据库DSN
func (c *AgentConfig) GetDatabaseDSN() string {
	return c.Agent.Storage.Database.DSN
}

// ApplyDefaults 应用默认值
func (c *AgentConfig) ApplyDefaults() {
	// General默认值
	if c.Agent.General.Name == "" {
		c.Agent.General.Name = "task_dependency_agent"
	}
	if c.Agent.General.LogLevel == "" {
		c.Agent.General.LogLevel = "info"
	}
	if c.Agent.General.Env == "" {
		c.Agent.General.Env = "dev"
	}

	// Oracle默认值（APIKey留空时从环境变量读取）
	if c.Agent.Oracle.Model == "" {
		c.Agent.Oracle.Model = "openai/gpt-4"
	}
	if c.Agent.Oracle.Timeout <= 0 {
		c.Agent.Oracle.Timeout = 30 * time.Second
	}
	if c.Agent.Oracle.MaxAttempts <= 0 {
		c.Agent.Oracle.MaxAttempts = 3
	}
	if c.Agent.Oracle.RetryDelay <= 0 {
		c.Agent.Oracle.RetryDelay = 1 * time.Second
	}

	// Storage默认值
	if c.Agent.Storage.Database.Type == "" {
		c.Agent.Storage.Database.Type = "sqlite"
	}
	if c.Agent.Storage.Database.DSN == "" {
		c.Agent.Storage.Database.DSN = "./data/tasks.db"
	}

	// LTM默认值
	if c.Agent.LTM.File == "" {
		c.Agent.LTM.File = "LTM/tda_ltm.json"
	}

	// Cron默认值
	if c.Agent.Cron.Expr == "" {
		c.Agent.Cron.Expr = "0 */5 * * * *" // 每5分钟
	}

	// Server默认值
	if c.Agent.Server.Host == "" {
		c.Agent.Server.Host = "0.0.0.0"
	}
	if c.Agent.Server.Port <= 0 {
		c.Agent.Server.Port = 8080
	}
	if c.Agent.Server.ReadTimeout <= 0 {
		c.Agent.Server.ReadTimeout = 30 * time.Second
	}
	if c.Agent.Server.WriteTimeout <= 0 {
		c.Agent.Server.WriteTimeout = 30 * time.Second
	}
}
