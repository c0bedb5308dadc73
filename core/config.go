package core

import (
	"fmt"
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

const envPrefix = "ASTRAVON"

type (
	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
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

	MailConfig struct {
		DefaultFromEmail        mail.Address
		SendgridAPIKey          string
		VerificationCodeTimeout time.Duration
	}

	UploadConfig struct {
		Driver      string // "disk" | "s3"
		Dir         string
		PublicURL   string
		S3Bucket    string
		S3Region    string
		S3Endpoint  string
		S3AccessKey string
		S3SecretKey string
	}

	ClientConfig struct {
		APIURL      string
		HubURL      string
		SessionFile string
	}

	Config struct {
		Debug           bool
		TestMode        bool
		AppName         string
		SecretKey       string
		Build           string
		Env             string
		FrontendBaseURL string
		RollbarToken    string
		AdminMails      []string

		Server   ServerConfig
		Database DatabaseConfig
		Mail     MailConfig
		Upload   UploadConfig
		Client   ClientConfig
	}
)

// Address returns the "host:port" the database listens on.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if present) and the environment.
// Environment variables are prefixed with ASTRAVON_ and nested keys use "_" (e.g. ASTRAVON_DATABASE_HOST).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v, env)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Astravon")
	v.SetDefault("secretKey", "n3v)x9k$e2!q7+ra=0w&pz4(j_u*m8c#tb%hy5@dl1ogf6is")
	v.SetDefault("build", "develop")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("admin.mails", []string{})

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "astravon")
	v.SetDefault("database.user", "astravon")
	v.SetDefault("database.password", "astravon")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("mail.defaultFromEmail", "noreply@localhost")
	v.SetDefault("mail.sendgridApiKey", "")
	v.SetDefault("mail.verificationCodeTimeout", 15*time.Minute)

	v.SetDefault("upload.driver", "disk")
	v.SetDefault("upload.dir", "media")
	v.SetDefault("upload.publicURL", "http://localhost:8000/media")
	v.SetDefault("upload.s3Bucket", "")
	v.SetDefault("upload.s3Region", "us-east-1")
	v.SetDefault("upload.s3Endpoint", "")
	v.SetDefault("upload.s3AccessKey", "")
	v.SetDefault("upload.s3SecretKey", "")

	v.SetDefault("client.apiURL", "http://localhost:8000")
	v.SetDefault("client.hubURL", "ws://localhost:8000/postHub")
	v.SetDefault("client.sessionFile", filepath.Join(os.TempDir(), "astravon-session.json"))
}

func fromViper(v *viper.Viper, env string) *Config {
	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		Build:           v.GetString("build"),
		Env:             env,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		RollbarToken:    v.GetString("rollbarToken"),
		AdminMails:      splitList(v.GetStringSlice("admin.mails")),
	}

	conf.Server = ServerConfig{
		Address:                   v.GetString("server.address"),
		Host:                      v.GetString("server.host"),
		DebugHost:                 v.GetString("server.debugHost"),
		ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
		JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
	}

	conf.Database = DatabaseConfig{
		Engine:        v.GetString("database.engine"),
		Host:          v.GetString("database.host"),
		Port:          v.GetInt("database.port"),
		Name:          v.GetString("database.name"),
		User:          v.GetString("database.user"),
		Password:      v.GetString("database.password"),
		AdminUser:     v.GetString("database.adminUser"),
		AdminPassword: v.GetString("database.adminPassword"),
		DisableTLS:    v.GetBool("database.disableTLS"),
	}

	from, err := mail.ParseAddress(v.GetString("mail.defaultFromEmail"))
	if err != nil {
		log.Fatal(fmt.Errorf("config: invalid mail.defaultFromEmail: %w", err))
	}
	conf.Mail = MailConfig{
		DefaultFromEmail:        *from,
		SendgridAPIKey:          v.GetString("mail.sendgridApiKey"),
		VerificationCodeTimeout: v.GetDuration("mail.verificationCodeTimeout"),
	}

	conf.Upload = UploadConfig{
		Driver:      v.GetString("upload.driver"),
		Dir:         v.GetString("upload.dir"),
		PublicURL:   strings.TrimRight(v.GetString("upload.publicURL"), "/"),
		S3Bucket:    v.GetString("upload.s3Bucket"),
		S3Region:    v.GetString("upload.s3Region"),
		S3Endpoint:  v.GetString("upload.s3Endpoint"),
		S3AccessKey: v.GetString("upload.s3AccessKey"),
		S3SecretKey: v.GetString("upload.s3SecretKey"),
	}

	conf.Client = ClientConfig{
		APIURL:      strings.TrimRight(v.GetString("client.apiURL"), "/"),
		HubURL:      v.GetString("client.hubURL"),
		SessionFile: v.GetString("client.sessionFile"),
	}
	return conf
}

// splitList accepts both list values and a single comma separated env value.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
