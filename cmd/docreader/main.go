package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/docreader/internal/config"
	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/logging"
	"github.com/csheth/docreader/internal/tui"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	apiURL := flag.String("api", "", "document API base URL (overrides DOCREADER_API_URL)")
	token := flag.String("token", "", "bearer token for the document API (overrides DOCREADER_TOKEN)")
	offline := flag.Bool("offline", false, "only open local files")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [document-id | file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Println("failed to load env file:", err)
		os.Exit(1)
	}
	cfg := config.Load("docreader")
	if *apiURL != "" {
		cfg.APIURL = strings.TrimRight(*apiURL, "/")
	}
	if *token != "" {
		cfg.Token = *token
	}

	logger, err := logging.FileOnly(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Println("logging disabled:", err)
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	tuiCfg := tui.Config{
		Logger: logger,
		Target: strings.Join(flag.Args(), " "),
	}
	if !*offline {
		client, err := docapi.New(docapi.Config{
			BaseURL:  cfg.APIURL,
			Token:    cfg.Token,
			CacheDir: cfg.CacheDir,
			Logger:   logger,
		})
		if err != nil {
			fmt.Println("document API disabled:", err)
		} else {
			tuiCfg.Documents = client
		}
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tuiCfg), opts...)

	logger.Info("docreader starting", zap.String("api", cfg.APIURL), zap.Bool("offline", *offline))
	if _, err := program.Run(); err != nil {
		logger.Error("program error", zap.Error(err))
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
