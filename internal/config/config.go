package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALENDAR_"

type Application struct {
	Host     string   `koanf:"host"`
	Server   Server   `koanf:"server"`
	Auth     Auth     `koanf:"auth"`
	Database Database `koanf:"db"`
	Client   Client   `koanf:"client"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Auth struct {
	Secret    string        `koanf:"secret"`
	Issuer    string        `koanf:"issuer"`
	TokenTTL  time.Duration `koanf:"tokenttl"`
	RateLimit RateLimit     `koanf:"ratelimit"`
}

// RateLimit applies to the login and register endpoints, per remote address.
type RateLimit struct {
	PerSecond float64 `koanf:"persecond"`
	Burst     int     `koanf:"burst"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Client configures the calendar-client binary.
type Client struct {
	BaseUrl         string        `koanf:"baseurl"`
	StoragePath     string        `koanf:"storagepath"`
	ErrorClearDelay time.Duration `koanf:"errorcleardelay"`
	RequestTimeout  time.Duration `koanf:"requesttimeout"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Server: Server{
			Port: 8181,
		},
		Auth: Auth{
			Issuer:   "calendar",
			TokenTTL: 2 * time.Hour,
			RateLimit: RateLimit{
				PerSecond: 5,
				Burst:     10,
			},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "calendar",
			Pass:   "",
			Name:   "calendar",
			Schema: "calendar",
		},
		Client: Client{
			BaseUrl:         "http://localhost:8181/api",
			StoragePath:     "storage/client.db",
			ErrorClearDelay: 10 * time.Millisecond,
			RequestTimeout:  15 * time.Second,
		},
	}
}

func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("error loading .env file: %v", err)
			return Application{}, err
		}
	} else {
		log.Info("Loaded environment from .env")
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
