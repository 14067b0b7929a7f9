package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	ServerConfig struct {
		Host string
		Addr string
	}

	Config struct {
		Debug    bool
		TestMode bool
		AppName  string
		Env      string
		Build    string

		Server ServerConfig

		// DataDir is where the JSON snapshot store keeps its files.
		DataDir string

		FrontendBaseURL   string
		DefaultFromEmail  mail.Address
		SendgridApiKey    string
		RollbarToken      string
		ProgramTeamEmails []string

		// NotifyOnSubmit fires an assessment-submitted email on every upsert.
		// Off by default: the usual flow only notifies on judge completion.
		NotifyOnSubmit bool

		EmailQueueSize int
		EmailWorkers   int

		Database DatabaseConfig
	}
)

func (dc DatabaseConfig) Address() string {
	return dc.Host + ":" + dc.Port
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Hukumu")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("dataDir", "data")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("emailQueueSize", 64)
	v.SetDefault("emailWorkers", 4)
	v.SetDefault("notifyOnSubmit", false)
	v.SetDefault("dbPort", "5432")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		AppName:  v.GetString("appName"),
		Env:      env,
		Build:    v.GetString("build"),
		Server: ServerConfig{
			Host: v.GetString("serverHost"),
			Addr: v.GetString("serverAddr"),
		},
		DataDir:          v.GetString("dataDir"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		NotifyOnSubmit:   v.GetBool("notifyOnSubmit"),
		EmailQueueSize:   v.GetInt("emailQueueSize"),
		EmailWorkers:     v.GetInt("emailWorkers"),
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
	}

	if emails := v.GetString("programTeamEmails"); emails != "" {
		for _, addr := range strings.Split(emails, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				Conf.ProgramTeamEmails = append(Conf.ProgramTeamEmails, addr)
			}
		}
	}
}
