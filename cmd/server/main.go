// Command server hosts one table of Skat: two players join over WebSocket and
// play against the bot. The exit status is 0 when the game was played, 1 when
// nobody wanted to play and 2 on any error.
//
// Usage:
//
//	server [d] [-v]             run a table; d writes the log to debug.txt
//	server keygen <key> <pub>   write a key pair for join tokens
//	server token <name>         print a join token (needs SKAT_PRIVATE_KEY)
//	server hash <passphrase>    print a hash for SKAT_TABLE_PASSWORD
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jason-s-yu/skat/internal/auth"
	"github.com/jason-s-yu/skat/internal/config"
	"github.com/jason-s-yu/skat/internal/database"
	"github.com/jason-s-yu/skat/internal/game"
	"github.com/jason-s-yu/skat/internal/gamelog"
	"github.com/jason-s-yu/skat/internal/handlers"
	"github.com/jason-s-yu/skat/internal/middleware"
	"github.com/jason-s-yu/skat/internal/transport"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const exitFatal = int(game.StatusFailed)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(exitFatal)
	}
	args := cfg.ApplyArgs(os.Args[1:])
	logger.SetLevel(cfg.LogLevel)

	if len(args) > 0 {
		if err := runCommand(cfg, args); err != nil {
			logger.Error(err)
			os.Exit(exitFatal)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status, err := serve(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Errorf("game aborted: %v", err)
	}
	os.Exit(int(status))
}

func runCommand(cfg *config.Config, args []string) error {
	switch args[0] {
	case "keygen":
		if len(args) != 3 {
			return errors.New("usage: server keygen <private key file> <public key file>")
		}
		iss, err := auth.NewIssuer(0)
		if err != nil {
			return err
		}
		return iss.SaveKeys(args[1], args[2])
	case "token":
		if len(args) != 2 {
			return errors.New("usage: server token <name>")
		}
		if cfg.PrivateKey == "" {
			return errors.New("SKAT_PRIVATE_KEY and SKAT_PUBLIC_KEY must name the key files")
		}
		iss, err := auth.LoadIssuer(cfg.PrivateKey, cfg.PublicKey, cfg.TokenTTL)
		if err != nil {
			return err
		}
		tok, err := iss.CreateJoinToken(args[1])
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	case "hash":
		if len(args) != 2 {
			return errors.New("usage: server hash <passphrase>")
		}
		hash, err := auth.CreateHash(args[1], auth.Params)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// serve runs the HTTP listener and the game side by side until the game ends.
func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (game.Status, error) {
	opts := game.Options{
		ID:          uuid.New(),
		BotName:     cfg.BotName,
		TurnTimeout: cfg.TurnTimeout,
	}

	join := handlers.JoinOptions{
		RequireToken:   cfg.RequireToken,
		PassphraseHash: cfg.TablePassword,
	}
	var err error
	if cfg.PrivateKey != "" {
		if join.Tokens, err = auth.LoadIssuer(cfg.PrivateKey, cfg.PublicKey, cfg.TokenTTL); err != nil {
			return game.StatusFailed, err
		}
	} else if cfg.RequireToken {
		return game.StatusFailed, errors.New("SKAT_REQUIRE_TOKEN needs SKAT_PRIVATE_KEY and SKAT_PUBLIC_KEY")
	}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return game.StatusFailed, err
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return game.StatusFailed, err
		}
		opts.Results = database.NewResultStore(pool)
	}

	acceptor := transport.NewAcceptor(game.RemoteSeats, logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(logger))
	r.Get("/skat/ws", handlers.JoinHandler(logger, acceptor, join))

	server := &http.Server{
		Handler:     r,
		ReadTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return game.StatusFailed, fmt.Errorf("failed to listen: %w", err)
	}
	logger.Infof("listening on %s", l.Addr())

	// the game closes the acceptor when it ends, which stops the listener
	acceptor.OnClose(func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if opts.Recorder, err = openRecorder(ctx, cfg, opts.ID, logger); err != nil {
		l.Close()
		return game.StatusFailed, err
	}

	g := game.New(acceptor, logger, opts)
	status := game.StatusFailed

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		status, err = g.Run(gctx)
		return err
	})
	err = eg.Wait()
	logger.WithField("game", g.ID).Infof("game finished: %s", status)
	return status, err
}

// openRecorder opens the game log file and, with REDIS_ADDR set, the Redis
// queue next to it.
func openRecorder(ctx context.Context, cfg *config.Config, gameID uuid.UUID, logger *logrus.Logger) (gamelog.Recorder, error) {
	path := gamelog.Path(cfg.LogDir, cfg.Debug, time.Now())
	file, err := gamelog.OpenFile(path, cfg.Debug)
	if err != nil {
		return nil, err
	}
	logger.Infof("writing game log to %s", path)
	if cfg.RedisAddr == "" {
		return file, nil
	}

	rdb, err := gamelog.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		file.Close()
		return nil, err
	}
	return gamelog.Multi{file, gamelog.NewRedisRecorder(rdb, cfg.LogQueue, gameID)}, nil
}
