package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ericselin/timecheck"
	"github.com/ericselin/timecheck/pkg/metrics"
	"github.com/ericselin/timecheck/store"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	configFilenameFlag string
	portFlag           int
	dbFilenameFlag     string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on (overrides config)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Posts DB file name (use 'memory' for in-memory store, overrides config)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	level := zerolog.DebugLevel
	if verbosityTraceFlag {
		level = zerolog.TraceLevel
	}
	closeLog, err := setupLogger(level, logFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Str("file", logFilenameFlag).Msg("Cannot open log file")
	}
	defer closeLog()

	config := Config{Port: 8080, DB: "posts.db"}
	if configFilenameFlag != "" {
		var err error
		if config, err = getConfig(configFilenameFlag); err != nil {
			log.Fatal().Err(err).Msg("Cannot read config file")
		}
	}
	if isFlagSet("port") || config.Port == 0 {
		config.Port = portFlag
	}
	if dbFilenameFlag != "" {
		config.DB = dbFilenameFlag
	}
	if config.DB == "" {
		config.DB = "posts.db"
	}

	// defaults, then environment, then config file
	envConfig, err := timecheck.InitFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timecheck environment")
	}
	if err := timecheck.SetDefault(envConfig.Merge(config.Timecheck)); err != nil {
		log.Fatal().Err(err).Msg("Invalid timecheck config")
	}
	log.Debug().Interface("timecheck", timecheck.Current()).Msg("Timestamp check configuration")

	var posts store.Store
	if config.DB == "memory" {
		posts = store.NewMemStore()
	} else {
		sqliteStore, err := store.NewSQLiteStore(config.DB)
		if err != nil {
			log.Fatal().Err(err).Str("db", config.DB).Msg("Cannot open posts db")
		}
		defer sqliteStore.Close()
		posts = sqliteStore
	}

	reg := prometheus.NewRegistry()
	mw := timecheck.NewMiddleware(timecheck.MiddlewareOptions{
		Rules:   config.Rules,
		Metrics: metrics.New(reg),
	})

	log.Info().Msgf("Serving posts on port %v", config.Port)
	err = http.ListenAndServe(fmt.Sprintf(":%d", config.Port), newRouter(posts, mw, reg))

	if err != nil {
		panic(err)
	}
}

// setupLogger points the global logger at the console and, when filename is
// set, appends to that file as well. The returned func closes the file.
func setupLogger(level zerolog.Level, filename string) (func(), error) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	closeFn := func() {}
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return closeFn, err
		}
		out = zerolog.MultiLevelWriter(out, f)
		closeFn = func() { f.Close() }
	}
	log.Logger = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("version", version).
		Logger()
	return closeFn, nil
}

func newRouter(posts store.Store, mw *timecheck.Middleware, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(
		hlog.NewHandler(log.Logger),
		hlog.RequestIDHandler("req_id", "Request-Id"),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Sending response to client")
		}),
	)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Route("/posts", func(r chi.Router) {
		r.Use(mw.Handler)
		postsAPI{store: posts}.routes(r)
	})
	return r
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
