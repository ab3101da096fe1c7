// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP API for chat, history, and uploaded images.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/jeranaias/thatbot/internal/ollama"
	"github.com/jeranaias/thatbot/internal/store"
	"github.com/jeranaias/thatbot/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// Version is the server version reported by /health.
	Version = "1.0.0"

	// DefaultPort is the default port for the API server.
	DefaultPort = 5000

	// DefaultHost binds the server to localhost only.
	DefaultHost = "127.0.0.1"

	// MaxMessageLength is the maximum chat message length in bytes.
	MaxMessageLength = 100000

	// DefaultMaxUploadBytes caps the size of one uploaded image.
	DefaultMaxUploadBytes = 10 * 1024 * 1024

	// uploadBodySlack covers multipart framing and form fields beyond the
	// image bytes themselves.
	uploadBodySlack = 1 << 20

	// multipartMemoryLimit is how much of a parsed form stays in memory
	// before spilling to temp files.
	multipartMemoryLimit = 8 << 20

	// DefaultChatRatePerMinute is the sustained per-session generation rate.
	DefaultChatRatePerMinute = 30

	// DefaultChatRateBurst allows short bursts above the sustained rate.
	DefaultChatRateBurst = 5

	// DefaultGenerationTimeout bounds one model round trip. It sits above
	// the model client's own timeout so the client reports timeouts first.
	DefaultGenerationTimeout = 120 * time.Second

	// staleLimiterAge is how long an idle session keeps its rate limiter.
	staleLimiterAge = 10 * time.Minute
)

// Persona primer prepended to every model conversation. The acknowledgement
// turn anchors the model in the persona before the real history replays.
const (
	personaPrompt = "You are ThatBot, a friendly and helpful AI assistant. " +
		"Your goal is to assist users with their questions accurately and politely. " +
		"You must never mention that you are a language model or which model runs underneath. " +
		"You are ThatBot. If this is the user's first real message, start your response by introducing yourself warmly."

	personaAck = "Okay, I understand completely. I am ThatBot, and I am ready to help!"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// HistoryEntry is one conversation message as served by GET /history.
type HistoryEntry struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
}

// ChatReply is the body of a successful POST /chat response.
type ChatReply struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports server liveness and dependency reachability.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Model         string `json:"model"`
	Store         string `json:"store"`
	Ollama        string `json:"ollama"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// StatsResponse reports request counters since startup.
type StatsResponse struct {
	TotalRequests    int64 `json:"total_requests"`
	ChatRequests     int64 `json:"chat_requests"`
	HistoryRequests  int64 `json:"history_requests"`
	ImagesStored     int64 `json:"images_stored"`
	GenerationErrors int64 `json:"generation_errors"`
	TotalTokens      int64 `json:"total_tokens"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}

// =============================================================================
// SERVER STATS
// =============================================================================

// ServerStats tracks request counters for the stats endpoint.
type ServerStats struct {
	TotalRequests    int64
	ChatRequests     int64
	HistoryRequests  int64
	ImagesStored     int64
	GenerationErrors int64
	TotalTokens      int64
	StartTime        time.Time

	mu sync.Mutex
}

// NewServerStats creates a new stats tracker.
func NewServerStats() *ServerStats {
	return &ServerStats{StartTime: time.Now()}
}

// RecordChat counts one completed generation and its output tokens.
func (s *ServerStats) RecordChat(tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	s.ChatRequests++
	s.TotalTokens += int64(tokens)
}

// RecordHistory counts one served history request.
func (s *ServerStats) RecordHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	s.HistoryRequests++
}

// RecordImage counts one stored upload.
func (s *ServerStats) RecordImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ImagesStored++
}

// RecordError counts one failed generation.
func (s *ServerStats) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	s.GenerationErrors++
}

// GetStats returns a snapshot of the counters.
func (s *ServerStats) GetStats() ServerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ServerStats{
		TotalRequests:    s.TotalRequests,
		ChatRequests:     s.ChatRequests,
		HistoryRequests:  s.HistoryRequests,
		ImagesStored:     s.ImagesStored,
		GenerationErrors: s.GenerationErrors,
		TotalTokens:      s.TotalTokens,
		StartTime:        s.StartTime,
	}
}

// Uptime returns how long the server has been running.
func (s *ServerStats) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.StartTime)
}

// =============================================================================
// PER-SESSION RATE LIMITER
// =============================================================================

// sessionLimiter enforces a per-session generation rate so one chatty
// session cannot monopolize the model.
type sessionLimiter struct {
	mu      sync.RWMutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

func newSessionLimiter(perMinute, burst int) *sessionLimiter {
	if perMinute <= 0 {
		perMinute = DefaultChatRatePerMinute
	}
	if burst <= 0 {
		burst = DefaultChatRateBurst
	}

	l := &sessionLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}

	go l.cleanup()

	return l
}

// allow reports whether the session may run another generation now.
func (l *sessionLimiter) allow(sessionID string) bool {
	l.mu.RLock()
	e, ok := l.entries[sessionID]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		if e, ok = l.entries[sessionID]; !ok {
			e = &limiterEntry{lim: rate.NewLimiter(l.rate, l.burst)}
			l.entries[sessionID] = e
		}
		l.mu.Unlock()
	}

	e.lastSeen.Store(time.Now().UnixNano())
	return e.lim.Allow()
}

// cleanup drops limiters for sessions idle longer than staleLimiterAge.
func (l *sessionLimiter) cleanup() {
	ticker := time.NewTicker(staleLimiterAge)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-staleLimiterAge).UnixNano()
		l.mu.Lock()
		for id, e := range l.entries {
			if e.lastSeen.Load() < cutoff {
				delete(l.entries, id)
			}
		}
		l.mu.Unlock()
	}
}

func (l *sessionLimiter) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// =============================================================================
// SERVER
// =============================================================================

// Server hosts the chat API backed by the conversation store and a local model.
type Server struct {
	host       string
	port       int
	router     *http.ServeMux
	server     *http.Server
	store      *store.Store
	ollama     *ollama.Client
	uploadsDir string
	model      string
	maxUpload  int64
	stats      *ServerStats
	chatLimits *sessionLimiter
	mu         sync.RWMutex
}

// NewServer creates a server listening on the given port.
// Pass 0 to use DefaultPort.
func NewServer(port int) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		host:       DefaultHost,
		port:       port,
		router:     http.NewServeMux(),
		maxUpload:  DefaultMaxUploadBytes,
		stats:      NewServerStats(),
		chatLimits: newSessionLimiter(DefaultChatRatePerMinute, DefaultChatRateBurst),
	}

	s.setupRoutes()

	return s
}

// WithHost sets the bind address. Empty host keeps the default.
func (s *Server) WithHost(host string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if host != "" {
		s.host = host
	}
	return s
}

// WithStore sets the conversation store.
func (s *Server) WithStore(st *store.Store) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
	return s
}

// WithOllamaClient sets the model client.
func (s *Server) WithOllamaClient(client *ollama.Client) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ollama = client
	return s
}

// WithUploadsDir sets where uploaded images are saved and served from.
func (s *Server) WithUploadsDir(dir string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadsDir = dir
	return s
}

// WithModel sets the model used for generations. Empty model falls back to
// the client's default at request time.
func (s *Server) WithModel(model string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
	return s
}

// WithChatRate overrides the per-session generation rate.
func (s *Server) WithChatRate(perMinute, burst int) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatLimits = newSessionLimiter(perMinute, burst)
	return s
}

// WithMaxUpload overrides the image size cap. Non-positive values keep the
// default.
func (s *Server) WithMaxUpload(maxBytes int64) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxBytes > 0 {
		s.maxUpload = maxBytes
	}
	return s
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /history", s.handleHistory)
	s.router.HandleFunc("POST /chat", s.handleChat)
	s.router.HandleFunc("GET /uploads/{filename}", s.handleUploadedFile)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)
}

// Handler returns the complete API handler with the middleware chain applied.
// Start serves this; tests can mount it in httptest directly.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		CORSMiddleware(DefaultCORSConfig()),
		RateLimitMiddleware(DefaultRateLimiter()),
	)(s.router)
}

// =============================================================================
// HISTORY HANDLER
// =============================================================================

// handleHistory serves the stored conversation for one session, oldest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	s.mu.RLock()
	st := s.store
	s.mu.RUnlock()

	if st == nil {
		writeError(w, http.StatusInternalServerError, "Database connection failed")
		return
	}

	messages, err := st.History(r.Context(), sessionID)
	if err != nil {
		log.Printf("HISTORY_ERROR | session=%s error=%v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Could not retrieve history from database.")
		return
	}

	// The response is always a JSON array, even when empty.
	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		entry := HistoryEntry{Sender: m.Sender, Text: m.Text}
		if m.ImagePath != "" {
			entry.Image = s.uploadURL(r, filepath.Base(m.ImagePath))
		}
		entries = append(entries, entry)
	}

	s.stats.RecordHistory()
	log.Printf("HISTORY_SERVED | session=%s count=%d", sessionID, len(entries))
	writeJSON(w, http.StatusOK, entries)
}

// uploadURL builds an absolute URL for a stored image, using the scheme and
// host the client reached us on.
func (s *Server) uploadURL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, filename)
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// handleChat runs one conversation turn: store the user message, generate a
// reply with the full session history replayed behind the persona primer,
// store the reply, and return it.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.store
	client := s.ollama
	uploadsDir := s.uploadsDir
	model := s.model
	maxUpload := s.maxUpload
	s.mu.RUnlock()

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+uploadBodySlack)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	sessionID := r.FormValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is missing")
		return
	}

	// Normalize before storing so history comparisons stay stable across
	// clients that compose the same text differently.
	message := norm.NFC.String(r.FormValue("message"))
	if len(message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "Message is too long")
		return
	}

	file, header, err := r.FormFile("file")
	hasFile := err == nil && header != nil && header.Filename != ""
	if err == nil {
		defer file.Close()
	}

	if message == "" && !hasFile {
		writeError(w, http.StatusBadRequest, "No message or file provided")
		return
	}

	if st == nil {
		writeError(w, http.StatusInternalServerError, "Database connection failed")
		return
	}
	if client == nil {
		writeError(w, http.StatusInternalServerError, "Model client is not configured")
		return
	}

	if !s.chatLimits.allow(sessionID) {
		log.Printf("CHAT_THROTTLED | session=%s", sessionID)
		writeError(w, http.StatusTooManyRequests, "Too many requests for this session, slow down")
		return
	}

	started := time.Now()

	var imagePath string
	var imageB64 string
	if hasFile {
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		if int64(len(data)) > maxUpload {
			writeError(w, http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit")
			return
		}
		if !strings.HasPrefix(http.DetectContentType(data), "image/") {
			writeError(w, http.StatusBadRequest, "Only image uploads are accepted")
			return
		}

		name := fmt.Sprintf("%s_%d_%s", sessionID, time.Now().Unix(), sanitizeFilename(header.Filename))
		full := filepath.Join(uploadsDir, name)
		if err := util.AtomicWriteFileWithDir(full, data, 0644, 0755); err != nil {
			log.Printf("UPLOAD_WRITE_FAILED | session=%s file=%s error=%v", sessionID, name, err)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err))
			return
		}

		imagePath = full
		imageB64 = base64.StdEncoding.EncodeToString(data)
		s.stats.RecordImage()
		log.Printf("IMAGE_SAVED | session=%s file=%s bytes=%d", sessionID, name, len(data))
	}

	userMsg := store.Message{
		SessionID: sessionID,
		Sender:    "user",
		Text:      message,
		ImagePath: imagePath,
	}
	if err := st.Append(r.Context(), &userMsg); err != nil {
		log.Printf("STORE_APPEND_FAILED | session=%s error=%v", sessionID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	history, err := st.History(r.Context(), sessionID)
	if err != nil {
		log.Printf("HISTORY_ERROR | session=%s error=%v", sessionID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	msgs := buildModelMessages(history, imageB64)

	if model == "" {
		model = client.GetDefaultModel()
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultGenerationTimeout)
	defer cancel()

	resp, err := client.Chat(ctx, model, msgs)
	if err != nil {
		s.stats.RecordError()
		log.Printf("GENERATION_FAILED | session=%s model=%s error=%v", sessionID, model, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	reply := resp.Message.Content

	botMsg := store.Message{
		SessionID: sessionID,
		Sender:    "bot",
		Text:      reply,
	}
	if err := st.Append(r.Context(), &botMsg); err != nil {
		log.Printf("STORE_APPEND_FAILED | session=%s error=%v", sessionID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	s.stats.RecordChat(resp.EvalCount)
	log.Printf("CHAT_COMPLETE | session=%s model=%s tokens=%d latency=%.2fs",
		sessionID, model, resp.EvalCount, time.Since(started).Seconds())

	writeJSON(w, http.StatusOK, ChatReply{Reply: reply})
}

// buildModelMessages assembles the prompt for one generation: the persona
// primer, then the stored conversation oldest first. The image, when present,
// rides on the final message, which is the user message that triggered this
// generation. Older images are not replayed.
func buildModelMessages(history []store.Message, imageB64 string) []ollama.Message {
	msgs := make([]ollama.Message, 0, len(history)+2)
	msgs = append(msgs, ollama.NewUserMessage(personaPrompt))
	msgs = append(msgs, ollama.NewAssistantMessage(personaAck))

	for i, m := range history {
		role := "user"
		if m.Sender == "bot" {
			role = "assistant"
		}
		msg := ollama.Message{Role: role, Content: m.Text}
		if imageB64 != "" && i == len(history)-1 {
			msg.Images = []string{imageB64}
		}
		msgs = append(msgs, msg)
	}

	return msgs
}

// =============================================================================
// UPLOADS HANDLER
// =============================================================================

// handleUploadedFile serves stored images. Only bare filenames are accepted,
// never paths.
func (s *Server) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	s.mu.RLock()
	dir := s.uploadsDir
	s.mu.RUnlock()

	if dir == "" {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	full := filepath.Join(dir, name)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	http.ServeFile(w, r, full)
}

// =============================================================================
// HEALTH AND STATS HANDLERS
// =============================================================================

// handleHealth reports liveness plus store and model reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.store
	client := s.ollama
	model := s.model
	s.mu.RUnlock()

	if model == "" && client != nil {
		model = client.GetDefaultModel()
	}

	resp := HealthResponse{
		Status:        "ok",
		Version:       Version,
		Model:         model,
		Store:         "unconfigured",
		Ollama:        "unconfigured",
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if st != nil {
		if err := st.Ping(ctx); err != nil {
			resp.Store = "unavailable"
			resp.Status = "degraded"
		} else {
			resp.Store = "ok"
		}
	} else {
		resp.Status = "degraded"
	}

	if client != nil {
		if err := client.CheckRunning(ctx); err != nil {
			resp.Ollama = "unavailable"
			resp.Status = "degraded"
		} else {
			resp.Ollama = "ok"
		}
	} else {
		resp.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleStats serves request counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.GetStats()
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalRequests:    snap.TotalRequests,
		ChatRequests:     snap.ChatRequests,
		HistoryRequests:  snap.HistoryRequests,
		ImagesStored:     snap.ImagesStored,
		GenerationErrors: snap.GenerationErrors,
		TotalTokens:      snap.TotalTokens,
		UptimeSeconds:    int64(time.Since(snap.StartTime).Seconds()),
	})
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.mu.Lock()

	handler := s.Handler()

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	model := s.model

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.mu.Unlock()

	log.Printf("SERVER_START | addr=%s version=%s model=%s", addr, Version, model)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}

	snap := s.stats.GetStats()
	log.Printf("SERVER_SHUTDOWN | requests=%d chats=%d uptime=%.0fs",
		snap.TotalRequests, snap.ChatRequests, time.Since(snap.StartTime).Seconds())

	return srv.Shutdown(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("RESPONSE_ENCODE_FAILED | error=%v", err)
	}
}

// writeError writes a JSON error body in the shape clients parse:
// {"error": "..."}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// unsafeFilenameChars matches everything not allowed in a stored filename.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces an uploaded filename to a safe basename. Browsers
// on Windows may send full paths, so both separator styles are stripped.
func sanitizeFilename(name string) string {
	name = norm.NFKC.String(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload"
	}
	return name
}
