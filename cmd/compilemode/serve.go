package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recera/compilemode/cmd/compilemode/internal/config"
	"github.com/recera/compilemode/cmd/compilemode/internal/ui"
)

func newServeCommand() *cobra.Command {
	var (
		opts buildOptions
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch sources and serve compiled templates",
		Long: `Watches the project like "watch" and serves the compiled templates over HTTP.
Connected clients are notified over a WebSocket whenever a template changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, host, port)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (defaults to the config's serve.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (defaults to the config's serve.port)")
	return cmd
}

func runServe(ctx context.Context, opts buildOptions, host string, port int) error {
	cfg, err := config.Load(opts.project)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// CLI takes precedence
	if host == "" {
		host = cfg.Serve.Host
	}
	if port == 0 {
		port = cfg.Serve.Port
	}

	s := newPreviewServer()
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Println(ui.Title("serving templates on http://" + srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return runWatch(ctx, opts, s.publish)
	})
	return g.Wait()
}

// previewServer serves the latest compiled templates and pushes changes to
// WebSocket clients.
type previewServer struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	outputs map[string]string
}

func newPreviewServer() *previewServer {
	return &previewServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for local preview
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
		outputs: make(map[string]string),
	}
}

func (s *previewServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/templates", s.serveIndex)
	mux.HandleFunc("/templates/", s.serveTemplate)
	return mux
}

// publish records out and notifies every client.
func (s *previewServer) publish(out *output) {
	text := templateText(out)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outputs[out.Source] == text {
		return
	}
	s.outputs[out.Source] = text
	s.notifyLocked("TEMPLATE", map[string]interface{}{
		"file":     out.Source,
		"template": text,
	})
}

func (s *previewServer) serveIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	files := make([]string, 0, len(s.outputs))
	for file := range s.outputs {
		files = append(files, file)
	}
	s.mu.Unlock()
	sort.Strings(files)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"files": files})
}

func (s *previewServer) serveTemplate(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimPrefix(r.URL.Path, "/templates/")

	s.mu.Lock()
	text, ok := s.outputs[file]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (s *previewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error", zap.Error(err))
			}
			return
		}

		switch msg["type"] {
		case "HELLO":
			s.mu.Lock()
			err := conn.WriteJSON(map[string]interface{}{"type": "ACK"})
			s.mu.Unlock()
			if err != nil {
				return
			}
		default:
			logger.Debug("unknown websocket message", zap.Any("type", msg["type"]))
		}
	}
}

// notifyLocked sends a message to every client. Writes are serialized by
// s.mu, which the caller holds.
func (s *previewServer) notifyLocked(msgType string, data map[string]interface{}) {
	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	for client := range s.clients {
		if err := client.WriteJSON(message); err != nil {
			logger.Debug("failed to notify client", zap.Error(err))
		}
	}
}

func (s *previewServer) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		client.Close()
	}
}
