// Command historian archives game log records from the Redis queue into
// PostgreSQL and marks games that went quiet as abandoned.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jason-s-yu/skat/internal/database"
	"github.com/jason-s-yu/skat/internal/gamelog"
	"github.com/jason-s-yu/skat/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	for _, arg := range os.Args[1:] {
		if arg == "-v" {
			logger.SetLevel(logrus.DebugLevel)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error(err)
		stop()
		os.Exit(1)
	}
	logger.Info("historian shutdown complete")
}

func run(ctx context.Context, logger *logrus.Logger) error {
	pool, err := database.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := gamelog.ConnectRedis(ctx, getEnv("REDIS_ADDR", "localhost:6379"), getEnvInt("REDIS_DB", 0))
	if err != nil {
		return err
	}
	defer rdb.Close()

	svc := historian.New(rdb, database.NewLogStore(pool), historian.Options{
		Queue:      getEnv("SKAT_LOG_QUEUE", gamelog.DefaultQueueName),
		BatchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		Inactivity: time.Duration(getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}, logger)
	return svc.Run(ctx)
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
