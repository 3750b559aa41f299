package main

import (
	"flag"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scribble/cache"
	"scribble/crud"
	"scribble/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running
	// in production, where a config.yaml is required before the app starts.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a config.yaml file is provided before the application starts.")
	flag.Parse()

	config, err := LoadConfig(*productionBool)
	must(err)

	// Set up logging. The global zap logger backs error reporting in the
	// request boundary (errs.LogError).
	logger, err := newLogger(config.IsProd())
	must(err)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err = Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithGroup(),
		crud.WithPost(config.PageSize),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(),
	)
	must(err)

	// Connect the page cache to redis.
	redisClient := redis.NewClient(&redis.Options{Addr: config.Redis.Addr})
	defer redisClient.Close()
	pageCache := cache.NewPageCache(redisClient, config.Redis.CacheTTL)

	// Set up a webserver and serve the app.
	server := http.NewServer(config.IsProd(), config.CSRFKey, logger, services, pageCache)
	server.Run(config.Port)
}

func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
