package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/server"
	"github.com/enercheck/compliance-server/services/zookeeper"
)

// Services that require network
const (
	DatabaseService  = "db"
	ZookeeperService = "zk"
)

func main() {

	cliParser := cli.NewApp()
	cliParser.Name = "enercheck"
	cliParser.Usage = "compliance verification server binary"
	cliParser.Version = "1.0"

	cliParser.Commands = []cli.Command{
		{
			Name:  "env",
			Usage: "Print all environment variables",
			Action: func(ctx *cli.Context) error {
				config.PrintECEnvironment()
				return nil
			},
		},
		{
			Name:  "makeScript",
			Usage: "Generate a startup script. Pipe output to a file.",
			Action: func(ctx *cli.Context) error {
				config.GenerateStartScript()
				return nil
			},
		},
		{
			Name:  "makeEnvScript",
			Usage: "List required env vars in script. Pipe output to a file.",
			Action: func(ctx *cli.Context) error {
				config.GenerateSourceEnvScript()
				return nil
			},
		},
		{
			Name:   "testService",
			Usage:  "Run network diagnostic test against a service dependency. Values: db, zk",
			Action: runServiceTest,
		},
	}

	var defaultCiphers cli.StringSlice
	defaultCiphers.Set("TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256")

	cliParser.Flags = []cli.Flag{
		cli.StringSliceFlag{
			Name:  "addCipher",
			Usage: "A Go ciphersuite for TLS configuration. Can be specified multiple times. See: https://golang.org/src/crypto/tls/cipher_suites.go",
			Value: &defaultCiphers,
		},
		cli.BoolTFlag{
			Name:  "useTLS",
			Usage: "Serve content over TLS. Defaults to true.",
		},
		cli.StringSliceFlag{
			Name:  "whitelist",
			Usage: "Whitelisted DNs for impersonation",
		},
		cli.StringFlag{
			Name:  "conf",
			Usage: "Path to yaml configuration file.",
			Value: "enercheck.yml",
		},
		cli.StringFlag{
			Name:  "tlsMinimumVersion",
			Usage: "Minimum Version of TLS to support (defaults to 1.2, valid values are 1.0, 1.1)",
			Value: "1.2",
		},
	}

	cliParser.Action = func(c *cli.Context) error {
		opts := config.NewCommandLineOpts(c)
		conf := config.NewAppConfiguration(opts)
		err := server.Start(conf)
		if err != nil {
			fmt.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
		return nil
	}

	cliParser.Run(os.Args)
}

func runServiceTest(ctx *cli.Context) error {
	service := ctx.Args().First()
	opts := config.NewCommandLineOpts(ctx)
	conf := config.NewAppConfiguration(opts)
	switch service {
	case DatabaseService:
		db, err := conf.DatabaseConnection.GetDatabaseHandle()
		if err != nil {
			fmt.Println("Cannot build database handle:", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			fmt.Println("Cannot ping database referenced by EC_DB_HOST:", err)
			os.Exit(1)
		}
		fmt.Println("Can reach database referenced by EC_DB_HOST")
		os.Exit(0)
	case ZookeeperService:
		addrs := strings.Split(conf.ZK.Address, ",")
		select {
		case <-zookeeper.IsOnline(addrs):
			fmt.Println("Can reach zookeeper cluster referenced by EC_ZK_URL")
			os.Exit(0)
		case <-time.After(30 * time.Second):
			fmt.Println("Cannot reach zookeeper cluster referenced by EC_ZK_URL")
			os.Exit(1)
		}
	default:
		fmt.Println("Unknown service. Values: db, zk")
		os.Exit(1)
	}
	return nil
}
