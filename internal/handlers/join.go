package handlers

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/skat/internal/auth"
	"github.com/jason-s-yu/skat/internal/middleware"
	"github.com/jason-s-yu/skat/internal/transport"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the WebSocket subprotocol clients must request.
const Subprotocol = "skat"

// JoinOptions controls who may take a seat.
type JoinOptions struct {
	// Tokens verifies join tokens. Without it tokens are ignored.
	Tokens *auth.Issuer

	// RequireToken rejects joiners without a valid token.
	RequireToken bool

	// PassphraseHash, when set, is the Argon2id hash of the table passphrase.
	PassphraseHash string
}

// JoinHandler seats remote players. It upgrades the request to a WebSocket and
// hands the connection to the acceptor, then holds the request open until the
// game closes the connection.
//
// The display name comes from a join token when one is presented, otherwise
// from the "name" query parameter.
func JoinHandler(logger logrus.FieldLogger, acceptor *transport.Acceptor, opts JoinOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if acceptor.Full() {
			http.Error(w, "Table is full", http.StatusConflict)
			return
		}

		name := cleanName(r.URL.Query().Get("name"))
		tok := joinToken(r)
		switch {
		case tok != "" && opts.Tokens != nil:
			sub, err := opts.Tokens.AuthenticateJoinToken(tok)
			if err != nil {
				logger.Warnf("join token from %s rejected: %v", r.RemoteAddr, err)
				http.Error(w, "Invalid join token", http.StatusUnauthorized)
				return
			}
			name = cleanName(sub)
		case opts.RequireToken:
			http.Error(w, "Join token required", http.StatusUnauthorized)
			return
		}

		if opts.PassphraseHash != "" {
			ok, err := auth.ComparePasswordAndHash(r.URL.Query().Get("passphrase"), opts.PassphraseHash)
			if err != nil {
				logger.Errorf("table passphrase check failed: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "Wrong table passphrase", http.StatusForbidden)
				return
			}
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		if c.Subprotocol() != Subprotocol {
			logger.Warnf("client %s connected with invalid subprotocol: %q", r.RemoteAddr, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'skat' subprotocol.")
			return
		}

		conn := transport.NewWSConn(c, name, r.RemoteAddr)
		if err := acceptor.Offer(conn); err != nil {
			code, reason := GameOverError, "The table is closed."
			if errors.Is(err, transport.ErrTableFull) {
				code, reason = TableFullError, "The table is full."
			}
			logger.Infof("turning away %s: %v", r.RemoteAddr, err)
			c.Close(code, reason)
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		<-conn.Done()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}
