package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/worldexplorers/placement/internal/assessment"
	"github.com/worldexplorers/placement/internal/export"
	"github.com/worldexplorers/placement/internal/handler"
	appI18n "github.com/worldexplorers/placement/internal/i18n"
	"github.com/worldexplorers/placement/internal/media"
	"github.com/worldexplorers/placement/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "placement",
		Short: "Kindergarten English placement assessment console",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), lookupCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `placement --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "placement.db", "SQLite database path")
	f.String("media-dir", "media", "Directory for captured photos and recordings")
	f.StringP("lang", "l", "en", "UI language (en, zh)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("evaluator-password", "", "Initial evaluator password (or set PLACEMENT_EVALUATOR_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export archived results as CSV or JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "placement.db", "SQLite database path")
	f.String("format", "csv", "Output format (csv, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <student name>",
		Short: "Print a student's most recent archived report",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookup,
	}
	f := cmd.Flags()
	f.String("db", "placement.db", "SQLite database path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PLACEMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("placement")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/placement")
	v.AddConfigPath("/etc/placement")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedEvaluator(db, v.GetString("evaluator-password")); err != nil {
		return fmt.Errorf("seed evaluator: %w", err)
	}

	if err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("cleanup expired sessions", "error", err)
	}

	lib, err := media.NewLibrary(v.GetString("media-dir"))
	if err != nil {
		return fmt.Errorf("open media library: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	h := handler.New(db, lib, handler.Config{
		SecureCookies: v.GetBool("secure-cookies"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting "+assessment.AppName,
		"version", assessment.Version,
		"addr", addr,
		"db", v.GetString("db"),
		"media_dir", v.GetString("media-dir"),
		"lang", lang,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	results, err := db.ListResults()
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format := strings.ToLower(v.GetString("format")); format {
	case "csv":
		err = export.WriteCSV(w, results)
	case "json":
		err = export.WriteJSON(w, results)
	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", format)
	}
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	slog.Info("exported results", "count", len(results), "output", outPath)
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	res, err := db.FindSyncedByName(args[0])
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	if res == nil {
		return fmt.Errorf("no archived result for %q", args[0])
	}

	fmt.Println(res.ReportDraft)
	return nil
}

// seedEvaluator stores the console password hash on first run. Later
// runs keep the stored hash; the flag is only needed once.
func seedEvaluator(db *store.Store, password string) error {
	hash, err := db.EvaluatorPasswordHash()
	if err != nil {
		return err
	}
	if hash != "" {
		return nil
	}

	if password == "" {
		return fmt.Errorf("evaluator password is required: set --evaluator-password flag or PLACEMENT_EVALUATOR_PASSWORD env var")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash evaluator password: %w", err)
	}
	if err := db.SetEvaluatorPassword(string(h)); err != nil {
		return fmt.Errorf("store evaluator password: %w", err)
	}

	slog.Info("seeded evaluator password")
	return nil
}
