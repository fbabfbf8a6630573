// Command client joins a Skat table from the terminal.
//
// Settings come from flags, falling back to SKAT_SERVER_URL, SKAT_NAME,
// SKAT_TOKEN and SKAT_TABLE_PASSWORD (a .env file is read too).
package main

import (
	"context"
	"flag"
	"net/url"
	"os"
	"os/signal"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/skat/internal/client"
	"github.com/jason-s-yu/skat/internal/handlers"
	"github.com/jason-s-yu/skat/internal/transport"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	server := flag.String("server", getEnv("SKAT_SERVER_URL", "ws://localhost:50007/skat/ws"), "table URL")
	name := flag.String("name", os.Getenv("SKAT_NAME"), "display name")
	token := flag.String("token", os.Getenv("SKAT_TOKEN"), "join token")
	passphrase := flag.String("passphrase", os.Getenv("SKAT_TABLE_PASSWORD"), "table passphrase")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	u, err := url.Parse(*server)
	if err != nil {
		logger.Fatalf("bad server url: %v", err)
	}
	q := u.Query()
	for k, v := range map[string]string{"name": *name, "token": *token, "passphrase": *passphrase} {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, resp, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		Subprotocols: []string{handlers.Subprotocol},
	})
	if err != nil {
		if resp != nil {
			logger.Fatalf("join refused: %s", resp.Status)
		}
		logger.Fatalf("failed to connect: %v", err)
	}
	logger.Debugf("connected to %s", u.Redacted())

	conn := transport.NewWSConn(c, "server", u.Host)
	defer conn.Close()

	if err := client.NewSession(conn, os.Stdin, os.Stdout).Run(ctx); err != nil {
		if status := websocket.CloseStatus(err); status != -1 {
			logger.Infof("server closed the connection: %v", status)
			return
		}
		logger.Errorf("session ended: %v", err)
		stop()
		os.Exit(1)
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
