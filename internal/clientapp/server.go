package clientapp

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phillip-england/hrms/internal/envutil"
	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/logging"
	"github.com/phillip-england/hrms/internal/middleware"
	"github.com/phillip-england/hrms/internal/roster"
	"github.com/phillip-england/hrms/internal/security"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	Addr           string
	APIBaseURL     string
	APITimeout     time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	CookieSecure   bool
	CSRFSecret     string
	AppEnv         string
	LogLevel       string
}

//go:embed templates/layout.html templates/dashboard.html templates/employees.html templates/attendance.html templates/employee_attendance.html assets/app.css
var templatesFS embed.FS

type server struct {
	api          *hrapi.Client
	validator    *forms.Validator
	importer     *roster.Importer
	csrf         *security.CSRF
	logger       *zap.Logger
	cookieSecure bool

	dashboardTmpl          *template.Template
	employeesTmpl          *template.Template
	attendanceTmpl         *template.Template
	employeeAttendanceTmpl *template.Template
}

func DefaultConfigFromEnv() Config {
	return Config{
		Addr:           envutil.String("CLIENT_ADDR", ":3000"),
		APIBaseURL:     envutil.String("API_BASE_URL", hrapi.DefaultBaseURL),
		APITimeout:     envutil.Duration("API_TIMEOUT", hrapi.DefaultTimeout),
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   75 * time.Second,
		RateLimitRPS:   envutil.Int("RATE_LIMIT_RPS", 20),
		RateLimitBurst: envutil.Int("RATE_LIMIT_BURST", 40),
		CookieSecure:   envutil.Bool("COOKIE_SECURE", false),
		CSRFSecret:     envutil.String("CSRF_SECRET", ""),
		AppEnv:         envutil.String("APP_ENV", "local"),
		LogLevel:       envutil.String("LOG_LEVEL", "info"),
	}
}

func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	handler, err := NewHandler(cfg, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("client listening",
			zap.String("addr", "http://localhost"+cfg.Addr),
			zap.String("api_base_url", cfg.APIBaseURL),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// NewHandler builds the full client: routes plus middleware.
func NewHandler(cfg Config, logger *zap.Logger) (http.Handler, error) {
	s, err := newServer(cfg, logger, time.Now)
	if err != nil {
		return nil, err
	}
	return s.handler(cfg), nil
}

func newServer(cfg Config, logger *zap.Logger, now func() time.Time) (*server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	csrf, err := security.NewCSRF(cfg.CSRFSecret)
	if err != nil {
		return nil, err
	}
	api := hrapi.New(hrapi.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Logger:  logger.Named("hrapi"),
	})
	validator := forms.New(now)

	return &server{
		api:                    api,
		validator:              validator,
		importer:               roster.NewImporter(api, validator),
		csrf:                   csrf,
		logger:                 logger,
		cookieSecure:           cfg.CookieSecure,
		dashboardTmpl:          parsePage("templates/dashboard.html"),
		employeesTmpl:          parsePage("templates/employees.html"),
		attendanceTmpl:         parsePage("templates/attendance.html"),
		employeeAttendanceTmpl: parsePage("templates/employee_attendance.html"),
	}, nil
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", name))
}

func (s *server) handler(cfg Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.HandlerFunc(s.rootRoute))
	mux.Handle("/healthz", http.HandlerFunc(s.health))
	mux.Handle("/assets/app.css", http.HandlerFunc(s.appCSSFile))
	mux.Handle("/theme", http.HandlerFunc(s.toggleTheme))
	mux.Handle("/dashboard", http.HandlerFunc(s.dashboardPage))
	mux.Handle("/employees", http.HandlerFunc(s.employeesRoute))
	mux.Handle("/employees/export.xlsx", http.HandlerFunc(s.exportEmployees))
	mux.Handle("/employees/import", http.HandlerFunc(s.importEmployees))
	mux.Handle("/employees/", http.HandlerFunc(s.employeeActionRoutes))
	mux.Handle("/attendance", http.HandlerFunc(s.attendanceRoute))
	mux.Handle("/attendance/export.xlsx", http.HandlerFunc(s.exportAttendance))
	mux.Handle("/attendance/", http.HandlerFunc(s.employeeAttendancePage))
	return s.withMiddleware(cfg, mux)
}

// withMiddleware wraps h in the request pipeline. AccessLog sits outside Recover so
// requests that panic are still logged with their 500.
func (s *server) withMiddleware(cfg Config, h http.Handler) http.Handler {
	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' https://fonts.googleapis.com 'unsafe-inline'",
		"font-src 'self' https://fonts.gstatic.com",
		"img-src 'self' data:",
		"script-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 2 * rps
	}

	return middleware.Chain(
		h,
		middleware.RequestID,
		middleware.AccessLog(s.logger),
		middleware.Recover(s.logger),
		middleware.RateLimitByIP(rate.Limit(rps), burst),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
		s.withPreferences,
		s.csrfProtect,
	)
}

func (s *server) rootRoute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.api.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "degraded",
			"backend": hrapi.ErrorMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": "ok"})
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// render fills the request-scoped fields of data and writes the page.
func (s *server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data pageData) {
	data.Theme = preferencesFromContext(r.Context()).Theme
	data.CSRF = csrfTokenFromContext(r.Context())
	data.Path = r.URL.Path
	if data.SuccessMessage == "" {
		data.SuccessMessage = r.URL.Query().Get("message")
	}
	if data.ToastError == "" {
		data.ToastError = r.URL.Query().Get("error")
	}
	data.TodayLabel = formatDate(s.validator.Today())

	page, err := executePage(tmpl, data)
	if err != nil {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		s.logger.Error("template render failed", zap.String("template", data.Nav), zap.Error(err))
		return
	}
	if err := writeHTML(w, status, page); err != nil {
		s.logger.Warn("write response failed", zap.String("path", data.Path), zap.Error(err))
	}
}

func executePage(tmpl *template.Template, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeHTML sends a fully rendered page. Once the header is out a write error can
// only be logged.
func writeHTML(w http.ResponseWriter, status int, page []byte) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(page)
	return err
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path string, params url.Values, message string) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("message", message)
	http.Redirect(w, r, path+"?"+params.Encode(), http.StatusFound)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path string, params url.Values, message string) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("error", message)
	http.Redirect(w, r, path+"?"+params.Encode(), http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
