package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazyfilter/internal/app"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/schema"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "", "config file (default: search the usual locations)")
	seedPath := flag.StringP("seed", "s", "", "JSON file with initial filters")
	printResult := flag.BoolP("print", "p", false, "print the final result as JSON on exit")
	setPassword := flag.Bool("set-password", false, "read the Postgres password from stdin and store it in the keyring")
	flag.Parse()

	if path := os.Getenv("LAZYFILTER_DEBUG"); path != "" {
		f, err := tea.LogToFile(path, "debug")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath != "" {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}
	if *printResult {
		cfg.Output.PrintOnExit = true
	}

	if *setPassword {
		if err := storePassword(cfg.Schema.Postgres); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	columns, err := loadColumns(cfg.Schema)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var seed models.ViewResult
	if path := firstNonEmpty(*seedPath, cfg.Filter.SeedFile); path != "" {
		seed, err = app.LoadSeed(path, columns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	zone.NewGlobal()
	a := app.New(cfg, columns, seed)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(a, opts...)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	if err := writeResult(cfg.Output, a.Result()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadColumns(cfg config.SchemaConfig) ([]models.Column, error) {
	src, err := schema.Open(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return schema.Load(ctx, src)
}

func storePassword(cfg config.PostgresConfig) error {
	dir, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	store, err := schema.NewPasswordStore(dir)
	if err != nil {
		return err
	}
	if store.IsUsingFallback() {
		log.Printf("Warning: no OS keyring available, storing password in %s", dir)
	}

	fmt.Fprintf(os.Stderr, "Password for %s@%s:%d/%s: ", cfg.User, cfg.Host, cfg.Port, cfg.Database)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("failed to read password: %w", err)
	}
	return store.Save(cfg.Host, cfg.Port, cfg.Database, cfg.User, strings.TrimRight(line, "\r\n"))
}

func writeResult(out config.OutputConfig, result models.ViewResult) error {
	if !out.PrintOnExit && !out.CopyOnExit {
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if out.PrintOnExit {
		fmt.Println(string(data))
	}
	if out.CopyOnExit {
		if err := clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("failed to copy result: %w", err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
