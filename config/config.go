package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

type storage struct {
	Driver     string `mapstructure:"driver"`
	BadgerPath string `mapstructure:"badger_path"`
	SQLDB      string `mapstructure:"sql_db"`
}

type RestAPI struct {
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Retries   int           `mapstructure:"retries"`
}

type session struct {
	DefaultBudget float64 `mapstructure:"default_budget"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" || t.Cert != "" || t.Key != ""
}

type consumers struct {
	SpendingGroup string `mapstructure:"spending_group"`
}

type topics struct {
	Checkouts string `mapstructure:"checkouts"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                tlsFiles  `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

// Enabled reports whether checkout events and spending aggregation run.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	Storage        storage    `mapstructure:"storage"`
	CatalogAPI     RestAPI    `mapstructure:"catalog_api"`
	UsersAPI       RestAPI    `mapstructure:"users_api"`
	Session        session    `mapstructure:"session"`
	Broker         broker     `mapstructure:"broker"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("catalog_api.base_url", "https://fakestoreapi.com")
	v.SetDefault("catalog_api.timeout", "5s")
	v.SetDefault("catalog_api.rate_limit", 10)
	v.SetDefault("catalog_api.retries", 3)
	v.SetDefault("users_api.base_url", "http://localhost:3000")
	v.SetDefault("users_api.timeout", "5s")
	v.SetDefault("users_api.rate_limit", 10)
	v.SetDefault("users_api.retries", 3)
	v.SetDefault("session.default_budget", 10000)
	v.SetDefault("broker.topics.checkouts", "checkouts")
	v.SetDefault("broker.consumers.spending_group", "spending")
}

// Load reads the file named by STOREFRONT_CONFIG_FILE or --config and
// exits with code 2 on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads a YAML config, filling the unset keys with defaults.
func LoadFile(path string) (Config, error) {
	const op = "config.LoadFile"

	v := viper.New()
	defaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	DefaultBudget=%v

	Storage:
	Driver=%q
	BadgerPath=%q
	SQLDB=%q

	CatalogAPI:
	BaseURL=%q Timeout=%s RateLimit=%v Retries=%d

	UsersAPI:
	BaseURL=%q Timeout=%s RateLimit=%v Retries=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		Checkouts=%q
	Consumers:
		SpendingGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Session.DefaultBudget,
		c.Storage.Driver,
		c.Storage.BadgerPath,
		maskDSN(c.Storage.SQLDB),
		c.CatalogAPI.BaseURL, c.CatalogAPI.Timeout,
		c.CatalogAPI.RateLimit, c.CatalogAPI.Retries,
		c.UsersAPI.BaseURL, c.UsersAPI.Timeout,
		c.UsersAPI.RateLimit, c.UsersAPI.Retries,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.Checkouts,
		c.Broker.Consumers.SpendingGroup,
	)
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at == -1 || scheme == -1 {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	user, _, ok := strings.Cut(creds, ":")
	if !ok {
		return dsn
	}
	return dsn[:scheme+3] + user + ":***" + dsn[at:]
}
