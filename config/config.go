package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"
)

type SystemConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	NodeId   int64  `yaml:"node_id" json:"node_id"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
	AlertTo  string `yaml:"alert_to" json:"alert_to"`
}

type AppConfig struct {
	System   SystemConfig `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
	Smtp     SmtpConfig   `yaml:"smtp" json:"smtp"`
}

var DefaultAppConfig = &AppConfig{
	System: SystemConfig{
		Appid:    "comptoir",
		Location: "Africa/Dakar",
		Workdir:  "/var/comptoir",
		NodeId:   1,
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1898,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "comptoir_v1",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/comptoir/comptoir.log",
	},
}

func (c *AppConfig) GetLogDir() string {
	return path(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path(c.System.Workdir, "data")
}

func (c *AppConfig) GetBackupDir() string {
	return path(c.System.Workdir, "backup")
}

func path(dir, sub string) string {
	p := filepath.Join(dir, sub)
	_ = os.MkdirAll(p, 0755)
	return p
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := strconv.ParseInt(evalue, 10, 64)
	if err == nil {
		f(p)
	}
}

// LoadConfig loads the yaml configuration file and applies environment overrides.
// A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	if cfile != "" && fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	} else {
		cfg = DefaultAppConfig
	}

	setEnvValue("COMPTOIR_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("COMPTOIR_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = v == "true" })
	setEnvValue("COMPTOIR_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("COMPTOIR_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("COMPTOIR_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("COMPTOIR_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("COMPTOIR_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvValue("COMPTOIR_SMTP_USERNAME", func(v string) { cfg.Smtp.Username = v })
	setEnvValue("COMPTOIR_SMTP_PASSWORD", func(v string) { cfg.Smtp.Password = v })
	setEnvInt64Value("COMPTOIR_DB_PORT", func(v int64) { cfg.Database.Port = int(v) })
	setEnvInt64Value("COMPTOIR_WEB_PORT", func(v int64) { cfg.Web.Port = int(v) })
	setEnvInt64Value("COMPTOIR_SYSTEM_NODE_ID", func(v int64) { cfg.System.NodeId = v })

	return cfg
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
