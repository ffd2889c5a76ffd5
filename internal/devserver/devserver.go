// Package devserver is a minimal demo HTTP test server over the core: it
// exposes evaluation and analysis over HTTP and pushes re-evaluation results
// to connected browser/editor clients over a websocket when fsnotify reports
// a change to a watched .fip file. It is deliberately small — a development
// convenience, not a production server.
package devserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"

	"github.com/fippli/fip/internal/cache"
	"github.com/fippli/fip/pkg/interp"
)

// Server serves a directory of .fip files.
type Server struct {
	dir      string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New creates a Server rooted at dir.
func New(dir string) *Server {
	return &Server{
		dir: dir,
		upgrader: websocket.Upgrader{
			// The demo server has no cross-origin constituency of its own,
			// so this accepts any origin rather than growing a policy no
			// caller has asked for.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: map[*websocket.Conn]bool{},
	}
}

// evalResult is the wire shape of a POST /evaluate or /analyze response.
type evalResult struct {
	Path   string   `json:"path"`
	Result string   `json:"result,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// ListenAndServe starts the HTTP server and its background fsnotify watcher,
// blocking until the listener errors.
func (s *Server) ListenAndServe(addr string) error {
	go s.watchAndBroadcast()

	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/ws", s.handleWS)
	log.Printf("fip serve: listening on %s, serving %s", addr, s.dir)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) resolvedPath(r *http.Request) string {
	return filepath.Join(s.dir, r.URL.Query().Get("path"))
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	path := s.resolvedPath(r)
	v, err := interp.EvaluateFile(path)
	res := evalResult{Path: r.URL.Query().Get("path")}
	if err != nil {
		res.Errors = []string{err.Error()}
	} else if v != nil {
		res.Result = v.Render()
	}
	writeJSON(w, res)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	path := s.resolvedPath(r)
	errs := interp.AnalyzeFile(path)
	res := evalResult{Path: r.URL.Query().Get("path")}
	for _, e := range errs {
		res.Errors = append(res.Errors, e.Error())
	}
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// The protocol is push-only (server -> client); drain and discard
	// whatever the client sends so the read side notices a closed socket
	// and we can deregister it.
	go func() {
		defer s.deregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) deregister(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// broadcast sends res to every connected client, dropping any that error
// (handleWS's reader goroutine will deregister them on its own).
func (s *Server) broadcast(res evalResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(res); err != nil {
			go s.deregister(conn)
		}
	}
}

// watchAndBroadcast re-evaluates a .fip file and pushes the result to every
// connected client whenever fsnotify reports it was written.
func (s *Server) watchAndBroadcast() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("fip serve: fsnotify: %v", err)
		return
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		log.Printf("fip serve: fsnotify: %v", err)
		return
	}

	// Collapses the editor's truncate-then-write and atomic-rename save
	// patterns, which otherwise fire two or three broadcasts per
	// keystroke-free save.
	hashes := cache.New()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) || filepath.Ext(ev.Name) != ".fip" {
				continue
			}
			if !hashes.Changed(ev.Name) {
				continue
			}
			rel, err := filepath.Rel(s.dir, ev.Name)
			if err != nil {
				rel = ev.Name
			}
			v, err := interp.EvaluateFile(ev.Name)
			res := evalResult{Path: rel}
			if err != nil {
				res.Errors = []string{err.Error()}
			} else if v != nil {
				res.Result = v.Render()
			}
			s.broadcast(res)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Println("fip serve:", fmt.Errorf("fsnotify: %w", err))
		}
	}
}
