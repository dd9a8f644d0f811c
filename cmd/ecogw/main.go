package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ecogw/internal/di"
	"ecogw/pkg/config"
)

func main() {
	var (
		configPath string
		host       string
		port       int
		debug      bool
	)
	flag.StringVar(&configPath, "config", "", "config file path (optional)")
	flag.StringVar(&host, "host", "localhost", "modbus listen host")
	flag.StringVar(&host, "H", "localhost", "modbus listen host (shorthand)")
	flag.IntVar(&port, "port", 502, "modbus listen port")
	flag.IntVar(&port, "p", 502, "modbus listen port (shorthand)")
	flag.BoolVar(&debug, "debug", false, "debug logging and periodic register dump")
	flag.BoolVar(&debug, "d", false, "debug mode (shorthand)")
	flag.Parse()

	// flags given on the command line win over file and environment
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load(configPath, func(c *config.Config) {
		if set["host"] || set["H"] {
			c.Modbus.Host = host
		}
		if set["port"] || set["p"] {
			c.Modbus.Port = port
		}
		if debug {
			c.Debug.Enabled = true
			c.Log.Level = "debug"
		}
	})
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
