//
// medialist
// =========
// A blogging platform backend: authors write articles under topics,
// readers bookmark articles, and every article gets an objectivity
// score at creation time.
//
// Boot the server:
// ----------------
// $ go run main.go
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/articles
// []
//
// $ curl -X POST -d '{"username":"ada","email":"ada@example.com","password":"s3cret","bio":"...","first_name":"Ada"}' http://localhost:3333/authors/create
// {"pk":1,"username":"ada","first_name":"Ada","bio":"...","token":"..."}
//
// $ curl -X POST -H 'Authorization: Token ...' -d '{"name":"Space","description":"...","thumbnail_url":"https://x/y.png"}' http://localhost:3333/topics/create
// {"pk":1,"name":"Space","description":"...","slug":"space",...}
//
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"

	"github.com/medialist/rest/internal/article"
	"github.com/medialist/rest/internal/author"
	"github.com/medialist/rest/internal/bookmark"
	"github.com/medialist/rest/internal/sentiment"
	"github.com/medialist/rest/internal/sqldb"
	"github.com/medialist/rest/internal/topic"
)

const ServiceName = "medialist"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

type App struct {
	sugarLogger *zap.SugaredLogger
	db          *sqldb.DB
}

// nolint
func main() {

	// nolint
	var (
		routes   = flag.Bool("routes", getEnvBool(ServiceName+"_routes", false), "Generate router documentation")
		addr     = flag.String("addr", getEnv(ServiceName+"_ADDR", ":3333"), "application port")
		diagPort = flag.String("diag_addr", getEnv(ServiceName+"_DIAG_ADDR", ":9999"), "diag port")
		dbURL    = flag.String("db", getEnv(ServiceName+"_DB", "sqlite:medialist.db"), "database url")
	)

	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync() // flushes buffer, if any
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	db, err := sqldb.Open(*dbURL)
	if err != nil {
		sugar.Fatalw("failed to open database", "url", *dbURL, "err", err)
	}
	defer db.Close()

	a := App{
		sugarLogger: sugar,
		db:          db,
	}

	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		a.sugarLogger.Panicf("failed to initialize prometheus exporter %v", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(ServiceName)
	labels := []attribute.KeyValue{
		attribute.String("status", "200")}
	RequestCompletedCount := metric.Must(meter).NewInt64Counter(
		"http/server/completed_count",
		metric.WithDescription("Count of completed requests, by HTTP method and response status"),
	).Bind(labels...)
	defer RequestCompletedCount.Unbind()

	r := chi.NewRouter()

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("root."))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Infow("ping with middle")
		RequestCompletedCount.Add(r.Context(), 1)
		_, err := w.Write([]byte("pong"))
		if err != nil {
			sugar.Errorw(err.Error())
		}
	})

	r.Mount("/authors", author.Resource{DB: db, Log: sugar}.Routes())
	r.Mount("/topics", topic.Resource{DB: db, Log: sugar}.Routes())
	r.Mount("/articles", article.Resource{DB: db, Analyzer: sentiment.NewLexicon(), Log: sugar}.Routes())
	r.Mount("/bookmarks", bookmark.Resource{DB: db, Log: sugar}.Routes())

	// Passing -routes to the program will generate docs for the above
	// router definition.
	if *routes {
		// nolint
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/medialist/rest",
			Intro:       "Welcome to the medialist generated docs.",
		}))

		return
	}

	go func() {
		err := http.ListenAndServe(*addr, r)
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	}()

	err = http.ListenAndServe(*diagPort, diagRouter)
	if err != nil {
		a.sugarLogger.Errorw(err.Error())
	}

}

func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, a.sugarLogger)))
	})
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
