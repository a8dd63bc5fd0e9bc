package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/neuroviz-data/scalpview/internal/acquire"
	"github.com/neuroviz-data/scalpview/internal/config"
	"github.com/neuroviz-data/scalpview/internal/db"
	"github.com/neuroviz-data/scalpview/internal/headmap"
	"github.com/neuroviz-data/scalpview/internal/httputil"
	"github.com/neuroviz-data/scalpview/internal/monitor"
	"github.com/neuroviz-data/scalpview/internal/spectral"
	"github.com/neuroviz-data/scalpview/internal/version"
)

var (
	listen     = flag.String("listen", "", "HTTP listen address (overrides SCALPVIEW_LISTEN)")
	dbFile     = flag.String("db", "", "Path to the SQLite database file (overrides SCALPVIEW_DB)")
	serialPort = flag.String("serial", "", "Amplifier serial port (overrides SCALPVIEW_SERIAL_PORT)")
	devMode    = flag.Bool("dev", false, "Run in dev mode")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *dbFile != "" {
		cfg.DBPath = *dbFile
	}
	if *serialPort != "" {
		cfg.SerialPort = *serialPort
	}

	args := flag.Args()
	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "serve":
		runServe(cfg)
	case "migrate":
		db.RunMigrateCommand(args[1:], cfg.DBPath, cfg.MigrationsDir)
	case "acquire":
		runAcquire(cfg, args[1:])
	case "watch":
		runWatch(cfg, args[1:])
	case "version":
		fmt.Printf("scalpview %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe(cfg *config.Config) {
	database, err := db.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	theme := headmap.ThemeLight
	if cfg.Theme == "dark" {
		theme = headmap.ThemeDark
	}

	jobs := spectral.NewManager(&spectral.SyntheticComputer{}, database)

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:    cfg.ListenAddr,
		DB:         database,
		Jobs:       jobs,
		Themes:     headmap.NewThemeSource(theme),
		RasterSize: cfg.RasterSize,
		DevMode:    *devMode,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

func runAcquire(cfg *config.Config, args []string) {
	port, err := acquire.NewSamplePort(cfg.SerialPort)
	if err != nil {
		log.Fatalf("failed to open amplifier port %s: %v", cfg.SerialPort, err)
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := port.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// Optional control words given on the command line are validated against
	// the amplifier allow list and sent before streaming.
	for _, word := range args {
		if !isAllowedCommand(word) {
			log.Fatalf("command %q is not in the amplifier allow list", word)
		}
		port.SendCommand(word)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case batch := <-port.Batches():
				log.Printf("batch of %d channels received", len(batch))
			case <-ctx.Done():
				log.Printf("batch routine terminated")
				return
			}
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

func runWatch(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: scalpview watch <job-id>")
		os.Exit(1)
	}

	poller := spectral.NewPoller(httputil.NewStandardClient(nil), jobStatusURL(cfg.ListenAddr, args[0]), spectral.DefaultPollInterval, func(v spectral.JobView) {
		if v.Err != "" {
			log.Printf("job %s: %s (%.0f%%): %s", v.ID, v.Status, v.Progress*100, v.Err)
			return
		}
		log.Printf("job %s: %s (%.0f%%)", v.ID, v.Status, v.Progress*100)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		poller.Stop()
	}()

	poller.Run()
}

// jobStatusURL turns the configured listen address into a pollable job
// status endpoint. Bare ":8080" style addresses resolve against localhost.
func jobStatusURL(listenAddr, jobID string) string {
	host := listenAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return fmt.Sprintf("http://%s/api/tfr/%s", host, jobID)
}

func printUsage() {
	fmt.Println("Usage: scalpview [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve     Start the HTTP server (default)")
	fmt.Println("  migrate   Manage database schema (up, down, status, force)")
	fmt.Println("  acquire   Stream samples from the amplifier serial port")
	fmt.Println("  watch     Follow a spectral job until it reaches a terminal state")
	fmt.Println("  version   Print build information")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
