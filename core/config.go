package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	// StorageConfig selects where the collection snapshot lives: memory | file | postgres.
	StorageConfig struct {
		Driver   string
		FilePath string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ReviewConfig struct {
		PassMark        int
		DistinctionMark int
		SLA             time.Duration
		StrictDecisions bool
	}

	AttendanceConfig struct {
		Threshold         int
		AcademicThreshold int
		TopAbsentees      int
	}

	// MailConfig selects the email back end: console | sendgrid | smtp.
	MailConfig struct {
		Backend       string
		SendgridKey   string
		SMTPHost      string
		SMTPPort      int
		SMTPUser      string
		SMTPPassword  string
		SkipTLSVerify bool
	}

	Config struct {
		Env                       string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		Build                     string
		SecretKey                 string
		FrontendBaseURL           string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration
		defaultFromEmail          string

		Server     ServerConfig
		Storage    StorageConfig
		Database   DatabaseConfig
		Review     ReviewConfig
		Attendance AttendanceConfig
		Mail       MailConfig
	}
)

func (conf DatabaseConfig) Address() string {
	return net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port))
}

func (conf *Config) DefaultFromEmail() mail.Address {
	if addr, err := mail.ParseAddress(conf.defaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
}

func newViper() (*viper.Viper, string) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "GetSkill")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "n7#kq0-2v!zr8@w+e5d^getskill^1m$x4p(9b)c3u&j6t=yh")
	v.SetDefault("defaultFromEmail", "GetSkill <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("disableReqLogs", false)

	v.SetDefault("storageDriver", "file")
	v.SetDefault("storageFilePath", filepath.Join("data", "getskill.json"))

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "getskill")
	v.SetDefault("dbUser", "getskill")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("reviewPassMark", 70)
	v.SetDefault("reviewDistinctionMark", 85)
	v.SetDefault("reviewSLA", 48*time.Hour)
	v.SetDefault("reviewStrictDecisions", true)

	v.SetDefault("attendanceThreshold", 75)
	v.SetDefault("academicThreshold", 70)
	v.SetDefault("topAbsentees", 8)

	v.SetDefault("mailBackend", "console")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("smtpHost", "")
	v.SetDefault("smtpPort", 587)
	v.SetDefault("smtpUser", "")
	v.SetDefault("smtpPassword", "")
	v.SetDefault("smtpSkipTLSVerify", false)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("storageDriver", "memory")
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
	return v, env
}

// NewConfig reads the configuration from defaults, the environment and config/.env.<env>.
func NewConfig() *Config {
	v, env := newViper()
	conf := &Config{
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		Build:                     v.GetString("build"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		defaultFromEmail:          v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:            v.GetString("serverAddress"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
			DisableReqLogs:     v.GetBool("disableReqLogs"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("storageDriver")),
			FilePath: v.GetString("storageFilePath"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Review: ReviewConfig{
			PassMark:        v.GetInt("reviewPassMark"),
			DistinctionMark: v.GetInt("reviewDistinctionMark"),
			SLA:             v.GetDuration("reviewSLA"),
			StrictDecisions: v.GetBool("reviewStrictDecisions"),
		},
		Attendance: AttendanceConfig{
			Threshold:         v.GetInt("attendanceThreshold"),
			AcademicThreshold: v.GetInt("academicThreshold"),
			TopAbsentees:      v.GetInt("topAbsentees"),
		},
		Mail: MailConfig{
			Backend:       strings.ToLower(v.GetString("mailBackend")),
			SendgridKey:   v.GetString("sendgridApiKey"),
			SMTPHost:      v.GetString("smtpHost"),
			SMTPPort:      v.GetInt("smtpPort"),
			SMTPUser:      v.GetString("smtpUser"),
			SMTPPassword:  v.GetString("smtpPassword"),
			SkipTLSVerify: v.GetBool("smtpSkipTLSVerify"),
		},
	}
	if conf.Debug && conf.Env == "PROD" {
		log.Printf("config: debug mode enabled in %s", conf.Env)
	}
	return conf
}

// NewTestConfig returns the configuration used by tests: in-memory storage, console mail, no request logs.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.TestMode = true
	conf.Storage.Driver = "memory"
	conf.Mail.Backend = "console"
	conf.Server.DisableReqLogs = true
	return conf
}
