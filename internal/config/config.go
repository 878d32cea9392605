package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Upload   UploadConfig   `mapstructure:"upload"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type FirebaseConfig struct {
	CredentialsPath  string `mapstructure:"credentials_path"`
	ProjectID        string `mapstructure:"project_id"`
	StorageBucket    string `mapstructure:"storage_bucket"`
	AuthEnabled      bool   `mapstructure:"auth_enabled"`
	MessagingEnabled bool   `mapstructure:"messaging_enabled"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	AdminEmails []string      `mapstructure:"admin_emails"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // firebase, s3, local
	BasePath  string `mapstructure:"base_path"`
	BaseURL   string `mapstructure:"base_url"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type UploadConfig struct {
	MaxSize int64 `mapstructure:"max_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// IsAdminEmail reports whether email is listed in auth.admin_emails.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.Auth.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "production")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("firebase.credentials_path", "./serviceAccountKey.json")
	v.SetDefault("firebase.auth_enabled", true)
	v.SetDefault("firebase.messaging_enabled", true)

	v.SetDefault("auth.token_ttl", 30*24*time.Hour)

	v.SetDefault("storage.type", "firebase")
	v.SetDefault("storage.base_path", "./uploads")
	v.SetDefault("storage.base_url", "/files")

	v.SetDefault("upload.max_size", 10<<20)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads .env, an optional config file and AROEIRA_* environment
// variables, in increasing order of precedence. configPath may be empty.
func Load(configPath string) (*Config, error) {
	// .env is optional; system environment wins either way
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("aroeira")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// unprefixed names kept from the single-binary deployment
	_ = v.BindEnv("server.port", "AROEIRA_SERVER_PORT", "PORT")
	_ = v.BindEnv("firebase.credentials_path", "AROEIRA_FIREBASE_CREDENTIALS_PATH", "FIREBASE_CREDENTIALS_PATH")
	_ = v.BindEnv("auth.jwt_secret", "AROEIRA_AUTH_JWT_SECRET", "JWT_SECRET")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configPath)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	// comma separated lists arrive as a single element from the environment
	cfg.Auth.AdminEmails = splitList(cfg.Auth.AdminEmails)
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if c.Server.Env != "development" {
			return errors.New("auth.jwt_secret is required outside development")
		}
		c.Auth.JWTSecret = "development-secret"
	}
	switch c.Storage.Type {
	case "firebase", "s3", "local":
	default:
		return errors.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	return nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// credentialsAvailable reports whether the service account key file exists.
func credentialsAvailable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
