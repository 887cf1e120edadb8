package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string

	AppName          string
	FrontendBaseURL  string
	DefaultFromEmail mail.Address
	SendgridAPIKey   string
	RollbarToken     string

	Server struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	Database struct {
		URI     string
		Name    string
		Timeout time.Duration
	}

	// admission & matching policy knobs
	MaxOpenApplications     int
	QualifiedMatchThreshold float64
	GoodMatchThreshold      float64
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Udahili")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("serverHost", "0.0.0.0:8000")
	conf.SetDefault("serverDebugHost", "0.0.0.0:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseURI", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "udahili")
	conf.SetDefault("databaseTimeout", 5*time.Second)
	conf.SetDefault("maxOpenApplications", 2)
	conf.SetDefault("qualifiedMatchThreshold", 0.6)
	conf.SetDefault("goodMatchThreshold", 0.7)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		MaxOpenApplications:     conf.GetInt("maxOpenApplications"),
		QualifiedMatchThreshold: conf.GetFloat64("qualifiedMatchThreshold"),
		GoodMatchThreshold:      conf.GetFloat64("goodMatchThreshold"),
	}
	c.Server.Host = conf.GetString("serverHost")
	c.Server.DebugHost = conf.GetString("serverDebugHost")
	c.Server.ShutdownTimeout = conf.GetDuration("serverShutdownTimeout")
	c.Database.URI = conf.GetString("databaseURI")
	c.Database.Name = conf.GetString("databaseName")
	c.Database.Timeout = conf.GetDuration("databaseTimeout")
	return c
}
