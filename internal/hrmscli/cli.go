package hrmscli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/phillip-england/hrms/internal/clientapp"
	"github.com/phillip-england/hrms/internal/envutil"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/logging"
	"go.uber.org/zap"
)

var ErrUsage = errors.New("usage")

func Execute(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return execute(ctx, args, os.Stdout)
}

func execute(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "setup":
		return runSetup(args[1:], stdout)
	case "run":
		return runClient(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:], stdout)
	case "import":
		return runImport(ctx, args[1:], stdout)
	case "dashboard":
		return runDashboard(ctx, args[1:], stdout)
	case "help", "-h", "--help":
		PrintUsage(stdout)
		return nil
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: hrms <setup|run|export|import|dashboard> [...]", ErrUsage)
}

func PrintUsage(w io.Writer) {
	lines := []string{
		"usage: hrms setup [--api-base-url http://localhost:8000] [--addr :3000] [--env-file .env] [--force]",
		"       hrms run [--env-file .env]",
		"       hrms export employees --out employees.xlsx",
		"       hrms export attendance --out attendance.xlsx [--date YYYY-MM-DD] [--employee EMP001]",
		"       hrms import employees --file roster.xlsx",
		"       hrms dashboard",
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func runSetup(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiBaseURL := fs.String("api-base-url", hrapi.DefaultBaseURL, "backend base URL")
	addr := fs.String("addr", ":3000", "client listen address")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	baseURL := strings.TrimSpace(*apiBaseURL)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return fmt.Errorf("--api-base-url must start with http:// or https://")
	}

	values := map[string]string{
		"API_BASE_URL":     baseURL,
		"API_TIMEOUT":      hrapi.DefaultTimeout.String(),
		"CLIENT_ADDR":      *addr,
		"CSRF_SECRET":      strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		"COOKIE_SECURE":    "false",
		"APP_ENV":          "local",
		"LOG_LEVEL":        "info",
		"RATE_LIMIT_RPS":   "20",
		"RATE_LIMIT_BURST": "40",
	}

	if err := envutil.WriteDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", *envPath)
	return nil
}

func runClient(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	envPath := fs.String("env-file", ".env", "path to .env file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := envutil.LoadDotEnv(*envPath); err != nil {
		return fmt.Errorf("load %s: %w", *envPath, err)
	}

	cfg := clientapp.DefaultConfigFromEnv()
	if err := clientapp.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// apiFlags are shared by the commands that talk to the backend directly.
type apiFlags struct {
	envPath string
	baseURL string
}

func (a *apiFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&a.envPath, "env-file", ".env", "path to .env file")
	fs.StringVar(&a.baseURL, "api-base-url", "", "backend base URL (defaults to API_BASE_URL)")
}

func (a *apiFlags) client() (*hrapi.Client, *zap.Logger, error) {
	if err := envutil.LoadDotEnv(a.envPath); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", a.envPath, err)
	}
	logger, err := logging.New(envutil.String("APP_ENV", "local"), envutil.String("LOG_LEVEL", "warn"))
	if err != nil {
		return nil, nil, err
	}
	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = envutil.String("API_BASE_URL", hrapi.DefaultBaseURL)
	}
	api := hrapi.New(hrapi.Config{
		BaseURL: baseURL,
		Timeout: envutil.Duration("API_TIMEOUT", hrapi.DefaultTimeout),
		Logger:  logger.Named("hrapi"),
	})
	return api, logger, nil
}
