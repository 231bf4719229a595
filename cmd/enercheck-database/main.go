package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli"

	"github.com/enercheck/compliance-server/config"
)

// defaultConfig holds values suitable for a containerized test db.
var defaultConfig = config.AppConfiguration{
	DatabaseConnection: config.DatabaseConfiguration{
		Driver:   "mysql",
		Host:     "127.0.0.1",
		Port:     "3306",
		Schema:   "compliancedb",
		Protocol: "tcp",
		Username: "compliance",
		Password: "compliancePW",
	},
}

func main() {

	app := cli.NewApp()
	app.Name = "enercheck-database"
	app.Usage = "enercheck database manager for setup and migrations"

	// Declare flags common to commands, and pass them in Flags below.
	confFlag := cli.StringFlag{
		Name:  "conf",
		Usage: "Path to yaml config",
	}

	force := cli.BoolFlag{
		Name:  "force",
		Usage: "ignore safety checks and initialize drop/recreate of schema",
	}

	rootUser := cli.StringFlag{
		Name:  "rootUser",
		Usage: "user required for schema modification; has default for test ",
		Value: "root",
	}

	rootPassword := cli.StringFlag{
		Name:  "rootPassword",
		Usage: "password required for schema modification; has default for test ",
		Value: "dbRootPassword",
	}

	app.Commands = []cli.Command{
		{
			Name:  "init",
			Usage: "Connect and initialize mysql database",
			Flags: []cli.Flag{confFlag, force, rootPassword, rootUser},
			Action: func(clictx *cli.Context) error {
				fmt.Println("Initializing database.")
				err := initialize(clictx)
				if err != nil {
					log.Fatal(err)
				}
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "Print status for configured database",
			Flags: []cli.Flag{confFlag},
			Action: func(clictx *cli.Context) error {
				fmt.Println("Checking DB status.")
				err := status(clictx)
				if err != nil {
					log.Fatal(err)
				}
				return nil
			},
		},
	}

	// Global flags. Used when no "command" passed. Must be repeated above for commands.
	app.Flags = []cli.Flag{
		confFlag,
	}

	// There is no "default" command. Print help and exit.
	app.Action = func(clictx *cli.Context) error {
		fmt.Printf("Must specify command. Run `%s help` for info", app.Name)
		return nil
	}

	app.Run(os.Args)
}

// initialize creates a new database from scratch. Root creds are required.
func initialize(clictx *cli.Context) error {

	conf, err := resolveConfig(clictx)
	if err != nil {
		return err
	}

	// Schema modification needs more than the service account.
	conf.DatabaseConnection.Username = clictx.String("rootUser")
	conf.DatabaseConnection.Password = clictx.String("rootPassword")

	fmt.Println("connecting to db")
	db, err := conf.DatabaseConnection.GetDatabaseHandle()
	if err != nil {
		return fmt.Errorf("could not connect to db: %v", err)
	}
	tries := 10
	for i := 0; i < tries; i++ {
		if err := db.Ping(); err != nil {
			fmt.Printf("could not ping db: %v\n", err)
			time.Sleep(2 * time.Second)
		} else {
			fmt.Println("database connection established")
			break
		}
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("could not ping db: %v", err)
	}
	defer db.Close()
	force := clictx.Bool("force")
	fmt.Println("force schema creation:", force)

	if !isDBEmpty(db) && !force {
		return errors.New("Database is not empty. Please review which DB you're connecting to or run with --force=true.")
	}
	fmt.Println("DB is ready to receive schema")
	if err := createSchema(db); err != nil {
		return err
	}
	fmt.Println("schema created")
	return nil
}

// status reports on the status of the DB given the credentials provided.
func status(clictx *cli.Context) error {

	conf, err := resolveConfig(clictx)
	if err != nil {
		return err
	}

	db, err := conf.DatabaseConnection.GetDatabaseHandle()
	if err != nil {
		return fmt.Errorf("could not create db connection: %v", err)
	}
	defer db.Close()

	if isDBEmpty(db) {
		fmt.Println("database is empty")
		return nil
	}
	fmt.Println("database is not empty")
	var version []string
	if err := db.Select(&version, `select schemaVersion from dbstate`); err == nil && len(version) > 0 {
		fmt.Println("schema version:", version[0])
	}
	return nil
}

// resolveConfig loads YAML from the conf flag, falling back to values for a
// containerized test db.
func resolveConfig(clictx *cli.Context) (config.AppConfiguration, error) {
	path := clictx.String("conf")
	if path == "" {
		return defaultConfig, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config.AppConfiguration{}, fmt.Errorf("path error: %v", err)
	}
	return config.LoadYAMLConfig(absPath)
}

// isDBEmpty tries to find table "rule". If it exists, the schema is already initialized.
func isDBEmpty(db *sqlx.DB) bool {

	fmt.Println("performing schema check")

	var name []string
	stmt := `select table_name from information_schema.tables where table_schema = database() and table_name = 'rule'`
	err := db.Select(&name, stmt)
	if err != nil {
		log.Println("could not do query:", err)
		return false
	}
	if len(name) == 0 {
		fmt.Println("db returned no results when querying for expected tables")
		return true
	}
	return false
}

// execStmt executes a SQL string against the database.
func execStmt(db *sqlx.DB, stmt string) error {
	log.Printf("executing statement: %s\n", stmt)
	results, err := db.Exec(stmt)
	if err != nil {
		return err
	}
	n, err := results.RowsAffected()
	if err != nil {
		return err
	}
	log.Printf("rows affected: %v\n", n)
	return err
}
