package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dastanaron/signupsaver/internal/app"
	"github.com/dastanaron/signupsaver/internal/commands"
	"github.com/dastanaron/signupsaver/internal/config"
	"github.com/dastanaron/signupsaver/internal/httpserver"
	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/popup"
	"github.com/dastanaron/signupsaver/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		stop()
		log.Fatal(err)
	}
}

type options struct {
	configPath   string
	dbPath       string
	store        string
	strict       bool
	logLevel     string
	title        string
	url          string
	save         bool
	list         bool
	deleteID     string
	importPath   string
	exportPath   string
	clearDoubles bool
	serve        bool
}

func (o options) oneShot() bool {
	return o.save || o.list || o.deleteID != "" || o.importPath != "" || o.exportPath != "" || o.clearDoubles
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("signupsaver", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Path to YAML config file (default: ~/.signupsaver/config.yaml)")
	fs.StringVar(&o.dbPath, "db", "", "Path to database file (default: ~/.signupsaver/signupsaver.db)")
	fs.StringVar(&o.store, "store", "", "Store backend: sqlite, redis or memory")
	fs.BoolVar(&o.strict, "strict", false, "Only accept SignUpGenius links")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	fs.StringVar(&o.title, "title", "", "Title of the page to save")
	fs.StringVar(&o.url, "url", "", "URL of the page to save")
	fs.BoolVar(&o.save, "save", false, "Save -title/-url into the folder and exit")
	fs.BoolVar(&o.list, "list", false, "Print the bookmarks of the folder and exit")
	fs.StringVar(&o.deleteID, "delete", "", "Delete the bookmark with this id and exit")
	fs.StringVar(&o.importPath, "import", "", "Path to HTML bookmarks file to import")
	fs.StringVar(&o.exportPath, "export", "", "Path to HTML bookmarks file to export")
	fs.BoolVar(&o.clearDoubles, "clear-doubles", false, "Remove duplicate bookmarks (same title and URL) from the folder")
	fs.BoolVar(&o.serve, "serve", false, "Run the HTTP API")
	err := fs.Parse(args)
	return o, err
}

func loadConfig(o options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.WithDBPath(o.dbPath)
	}
	if o.store != "" {
		cfg.Store = o.store
	}
	if o.strict {
		cfg.Strict = true
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// run returns startup and command errors to main, which reports them on stderr
// before any screen is taken over
func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	interactive := !o.oneShot() && !o.serve
	loggerClient := logger.Nop()
	if !interactive {
		loggerClient = logger.New(cfg.LogLevel, cfg.PrettyLog)
	}
	defer loggerClient.Sync()

	loggerClient.Debug("starting",
		logger.String("store", cfg.Store),
		logger.String("folder", cfg.FolderName),
		logger.Bool("strict", cfg.Strict))

	repo, err := app.OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer repo.Close()

	svc, err := app.NewServices(repo, cfg, loggerClient)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	tab := models.Tab{Title: o.title, URL: o.url}
	console := commands.NewConsoleSurface(out)
	consolePopup := popup.New(popup.Deps{
		FolderName: cfg.FolderName,
		Folders:    svc.Folders,
		Bookmarks:  svc.Bookmarks,
		Tabs:       popup.StaticTab(tab),
		List:       console,
		Status:     console,
	})

	switch {
	case o.save:
		if tab.URL == "" {
			return errors.New("-save needs -url")
		}
		if _, err := consolePopup.Save(ctx); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		return nil
	case o.list:
		if err := consolePopup.Open(ctx); err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		return nil
	case o.deleteID != "":
		if err := consolePopup.Delete(ctx, o.deleteID); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		return nil
	case o.importPath != "":
		importCmd := commands.NewImportCommand(cfg.FolderName, svc.Folders, svc.Bookmarks, out)
		if _, err := importCmd.Execute(ctx, o.importPath); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		return nil
	case o.exportPath != "":
		exportCmd := commands.NewExportCommand(cfg.FolderName, svc.Folders, svc.Bookmarks, out)
		if err := exportCmd.Execute(ctx, o.exportPath); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil
	case o.clearDoubles:
		clearCmd := commands.NewClearDoublesCommand(cfg.FolderName, svc.Folders, svc.Bookmarks, out)
		if _, err := clearCmd.Execute(ctx); err != nil {
			return fmt.Errorf("clear doubles failed: %w", err)
		}
		return nil
	case o.serve:
		return runServer(ctx, cfg, svc, loggerClient)
	}

	// Run TUI application
	tui := ui.NewApp(ui.Options{
		FolderName:  cfg.FolderName,
		Folders:     svc.Folders,
		Bookmarks:   svc.Bookmarks,
		DefaultTab:  tab,
		StatusDelay: cfg.StatusDelay,
	})
	return tui.Run()
}

func runServer(ctx context.Context, cfg *config.Config, svc *app.Services, loggerClient logger.Logger) error {
	srv := httpserver.New(cfg.ListenAddr, httpserver.Deps{
		FolderName: cfg.FolderName,
		Folders:    svc.Folders,
		Bookmarks:  svc.Bookmarks,
		Logger:     loggerClient,
		StartTime:  time.Now(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			loggerClient.Errorf("HTTP server shutdown: %v", err)
		}
		return nil
	}
}
