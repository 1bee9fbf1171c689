package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SWEETSHOP_CONFIG_FILE"

type consumers struct {
	SignalsGroup    string `mapstructure:"signals_group"`
	PopularityGroup string `mapstructure:"popularity_group"`
}

type topics struct {
	ViewSignals     string `mapstructure:"view_signals"`
	PurchaseSignals string `mapstructure:"purchase_signals"`
}

type httpServer struct {
	Addr              string        `mapstructure:"addr"`
	HandlerTimeout    time.Duration `mapstructure:"handler_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t brokerTLS) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
	TLS                brokerTLS `mapstructure:"tls"`
}

type Config struct {
	LogLevel        slog.Level `mapstructure:"log_level"`
	HTTPServer      httpServer `mapstructure:"http_server"`
	SQLDB           string     `mapstructure:"sql_db"`
	AuthServiceAddr string     `mapstructure:"auth_service_addr"`
	Broker          broker     `mapstructure:"broker"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
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
	tamplate := `
	General:
	LogLevel=%q
	SQLDB=%q
	AuthServiceAddr=%q

	HTTPServer:
	Addr=%q
	HandlerTimeout=%q
	ReadHeaderTimeout=%q
	IdleTimeout=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		ViewSignals=%q
		PurchaseSignals=%q
	Consumers:
		SignalsGroup=%q
		PopularityGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.SQLDB,
		c.AuthServiceAddr,
		c.HTTPServer.Addr,
		c.HTTPServer.HandlerTimeout,
		c.HTTPServer.ReadHeaderTimeout,
		c.HTTPServer.IdleTimeout,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.ViewSignals,
		c.Broker.Topics.PurchaseSignals,
		c.Broker.Consumers.SignalsGroup,
		c.Broker.Consumers.PopularityGroup,
	)
}
