package core

import (
	"log"
	"net"
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
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine           string
		Host             string
		Port             int
		Name             string
		User             string
		Password         string
		AdminUser        string
		AdminPassword    string
		DisableTLS       bool
		MaxOpenConns     int
		MaxIdleConns     int
		StatementTimeout time.Duration
		TxTimeout        time.Duration
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
	}
)

// Address returns the "host:port" the database listens on.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Registrar")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "k2p!x0vd-7s)wq@5m_u=e#3ghb8yr9(n&zc+4jta^%lf6io1$")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "registrar")
	conf.SetDefault("database.user", "registrar")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.adminUser", "postgres")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("database.maxOpenConns", 10)
	conf.SetDefault("database.maxIdleConns", 5)
	conf.SetDefault("database.statementTimeout", 5*time.Second)
	conf.SetDefault("database.txTimeout", 10*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:           conf.GetString("database.engine"),
			Host:             conf.GetString("database.host"),
			Port:             conf.GetInt("database.port"),
			Name:             conf.GetString("database.name"),
			User:             conf.GetString("database.user"),
			Password:         conf.GetString("database.password"),
			AdminUser:        conf.GetString("database.adminUser"),
			AdminPassword:    conf.GetString("database.adminPassword"),
			DisableTLS:       conf.GetBool("database.disableTLS"),
			MaxOpenConns:     conf.GetInt("database.maxOpenConns"),
			MaxIdleConns:     conf.GetInt("database.maxIdleConns"),
			StatementTimeout: conf.GetDuration("database.statementTimeout"),
			TxTimeout:        conf.GetDuration("database.txTimeout"),
		},
	}
}
