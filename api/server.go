// Package api exposes the HTTP surface: document upload, ad-hoc question
// answering, free-form chat, and the embedded browser UI.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docpal/docpal/chat"
	"github.com/docpal/docpal/ingestion"
	"github.com/docpal/docpal/llm"
	"github.com/docpal/docpal/qa"
	"github.com/docpal/docpal/store"
)

// Server wires the ingestion registry and services into HTTP handlers.
type Server struct {
	logger   *log.Logger
	registry *ingestion.Registry
	docs     *store.Store
	chat     *chat.Service
	qa       *qa.Service
	handler  http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type capabilitiesResponse struct {
	Supported []string `json:"supported"`
	Missing   []string `json:"missing"`
}

type uploadResult struct {
	Name     string          `json:"name"`
	Document *store.Document `json:"document,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type uploadResponse struct {
	Results []uploadResult `json:"results"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message"`
	History []chatMessage `json:"history"`
	FileIDs []string      `json:"fileIds"`
}

type chatResponse struct {
	Reply   string        `json:"reply"`
	History []chatMessage `json:"history"`
}

// New constructs a Server from the shared services. A nil logger falls back
// to the default logger.
func New(logger *log.Logger, registry *ingestion.Registry, docs *store.Store, chatSvc *chat.Service, qaSvc *qa.Service) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		logger:   logger,
		registry: registry,
		docs:     docs,
		chat:     chatSvc,
		qa:       qaSvc,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/capabilities", s.handleCapabilities)
	r.Post("/v1/files", s.handleUpload)
	r.Get("/v1/files", s.handleListFiles)
	r.Delete("/v1/files", s.handleClearFiles)
	r.Post("/v1/ask", s.handleAsk)
	r.Post("/v1/chat", s.handleChat)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, capabilitiesResponse{
		Supported: s.registry.Supported(),
		Missing:   s.registry.Missing(),
	})
}

// handleUpload extracts text from each uploaded file independently. One
// file's failure is recorded in its result and never aborts the batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ingestion.MaxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("no files provided, use multipart field %q", "files"))
		return
	}

	results := make([]uploadResult, 0, len(headers))
	for _, header := range headers {
		result := uploadResult{Name: header.Filename}

		text, err := s.extractUpload(header)
		if err != nil {
			s.logger.Printf("upload %s failed: %v", header.Filename, err)
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		doc := s.docs.Add(header.Filename, header.Size, text)
		result.Document = &doc
		results = append(results, result)
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{Results: results})
}

func (s *Server) extractUpload(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return s.registry.Extract(ingestion.Blob{
		Name:      header.Filename,
		Size:      header.Size,
		MediaType: header.Header.Get("Content-Type"),
		Reader:    file,
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.docs.List())
}

func (s *Server) handleClearFiles(w http.ResponseWriter, _ *http.Request) {
	n := s.docs.Clear()
	s.writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("removed %d documents", n)})
}

// handleAsk answers one question against one uploaded file. The upload is
// spooled to a temporary file that is removed on every exit path.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ingestion.MaxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "docpal-ask-*")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("create temp file: %w", err))
		return
	}
	defer func() {
		tmp.Close()
		if removeErr := os.Remove(tmp.Name()); removeErr != nil {
			s.logger.Printf("remove temp file %s: %v", tmp.Name(), removeErr)
		}
	}()

	size, err := io.Copy(tmp, file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("spool upload: %w", err))
		return
	}

	answer, err := s.qa.Ask(r.Context(), question, ingestion.Blob{
		Name:      header.Filename,
		Size:      size,
		MediaType: header.Header.Get("Content-Type"),
		Reader:    tmp,
	})
	if err != nil {
		s.writeError(w, extractionStatus(err), fmt.Errorf("answer question: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, answer)
}

// handleChat runs one conversation turn. The client owns the history; a
// failed turn returns an error without echoing a mutated history back.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}

	fileContext, err := s.collectFileContext(req.FileIDs)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	history := make([]llm.Message, len(req.History))
	for i, msg := range req.History {
		history[i] = llm.Message{Role: msg.Role, Content: msg.Content}
	}

	reply, updated, err := s.chat.Send(r.Context(), history, req.Message, fileContext)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("chat failed: %w", err))
		return
	}

	resp := chatResponse{Reply: reply, History: make([]chatMessage, len(updated))}
	for i, msg := range updated {
		resp.History[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) collectFileContext(fileIDs []string) (string, error) {
	if len(fileIDs) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, id := range fileIDs {
		doc, err := s.docs.Get(id)
		if err != nil {
			return "", fmt.Errorf("file context: %w", err)
		}
		sb.WriteString(fmt.Sprintf("--- File: %s ---\n", doc.Name))
		sb.WriteString(doc.Text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractionStatus maps ingestion failures to client errors; anything else
// is a server-side failure.
func extractionStatus(err error) int {
	switch {
	case errors.Is(err, ingestion.ErrSizeLimit),
		errors.Is(err, ingestion.ErrUnsupportedFormat),
		errors.Is(err, ingestion.ErrMissingDependency),
		errors.Is(err, ingestion.ErrDecodeFailed),
		errors.Is(err, ingestion.ErrEmptyContent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
