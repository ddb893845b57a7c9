package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"stockdash/internal/app"
	"stockdash/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "config/stockdash.yaml"
	if p := os.Getenv("STOCKDASH_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to config file")
	ticker := flag.String("ticker", "", "ticker to show first (default from config)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The alt screen owns stdout, so logs go to a file.
	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = fmt.Sprintf("/tmp/stockdash-%s.log", time.Now().Format("2006-01-02"))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := cfg.Logging.NewLogger(logFile)

	core := app.New(cfg, logger)
	defer core.Close()

	id, updates := core.Store.Subscribe()
	defer core.Store.Unsubscribe(id)

	initial := cfg.Dashboard.DefaultTicker
	if *ticker != "" {
		initial = *ticker
	}
	if err := core.Controller.SetSelection(initial); err != nil {
		fmt.Fprintf(os.Stderr, "selecting %q: %v\n", initial, err)
		os.Exit(1)
	}
	logger.Info("dashboard started", "ticker", core.Controller.Selection(), "api", cfg.API.BaseURL)

	p := tea.NewProgram(
		newModel(core.Controller, updates, cfg.Dashboard.Popular, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
