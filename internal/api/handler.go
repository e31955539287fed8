package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"oee-analyzer-go/internal/config"
	"oee-analyzer-go/internal/dataset"
	"oee-analyzer-go/internal/history"
	"oee-analyzer-go/internal/logger"
	"oee-analyzer-go/internal/metrics"
	"oee-analyzer-go/internal/processor"
	"oee-analyzer-go/internal/report"
	"oee-analyzer-go/internal/schema"
	"oee-analyzer-go/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Request outcome labels for the requests counter.
const (
	statusOK             = "ok"
	statusSchemaMismatch = "schema_mismatch"
	statusBadRequest     = "bad_request"
	statusAborted        = "aborted"
)

// historyTimeout bounds the history append after a request has been answered.
const historyTimeout = 5 * time.Second

// Server serves the analyzer over HTTP. Config is read per request so a
// reloaded file takes effect without a restart.
type Server struct {
	config  func() *config.Config
	store   *history.Store
	metrics *metrics.Registry
	now     func() time.Time
}

// NewServer wires the handlers. A nil store disables history.
func NewServer(cfg func() *config.Config, store *history.Store, reg *metrics.Registry) *Server {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Server{config: cfg, store: store, metrics: reg, now: time.Now}
}

// Routes registers every endpoint on a new mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("POST /analyze", s.analyze)
	mux.HandleFunc("GET /history", s.history)
	mux.HandleFunc("GET /metrics", s.exposeMetrics)
	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	logger.New().WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

type errorBody struct {
	Error   string   `json:"error"`
	Sheet   string   `json:"sheet,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
	reqLog.Info("analyze request received")
	cfg := s.config()

	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(cfg.MaxUploadBytes()); err != nil {
		reqLog.WithError(err).Warn("bad multipart body")
		s.metrics.ObserveRequest(statusBadRequest)
		writeJSON(w, reqLog, http.StatusBadRequest, errorBody{Error: "expected multipart form with an 'oee' workbook"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	// Workbook parsing dominates a request; the two uploads are independent.
	var (
		hourly []types.HourlyRecord
		events []types.EventRecord
		g      errgroup.Group
	)
	g.Go(func() (err error) {
		hourly, err = loadPart(r, "oee", true, func(f io.Reader, _ string) ([]types.HourlyRecord, error) {
			return dataset.LoadHourly(f)
		})
		return err
	})
	g.Go(func() (err error) {
		events, err = loadPart(r, "events", false, func(f io.Reader, filename string) ([]types.EventRecord, error) {
			return loadEvents(f, filename, cfg.Location())
		})
		return err
	})
	if err := g.Wait(); err != nil {
		s.loadFailed(w, reqLog, err)
		return
	}
	reqLog = reqLog.WithField("hourly_rows", len(hourly)).WithField("events", len(events))

	clock := cfg.Clock()
	res, err := processor.Analyze(r.Context(), processor.Input{Hourly: hourly, Events: events}, processor.Options{Clock: &clock})
	if err != nil {
		reqLog.WithError(err).Warn("analysis aborted")
		s.metrics.ObserveRequest(statusAborted)
		writeJSON(w, reqLog, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return
	}

	s.metrics.ObserveRequest(statusOK)
	s.metrics.ObserveRun(res)
	s.record(reqLog, res)

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="oee_analysis.xlsx"`)
		if err := report.Write(w, report.Sheets(res)); err != nil {
			reqLog.WithError(err).Error("failed to write report")
		}
		return
	}
	writeJSON(w, reqLog, http.StatusOK, res)
}

// loadPart opens the named upload and parses it. A missing optional part
// yields no records.
func loadPart[T any](r *http.Request, field string, required bool, parse func(f io.Reader, filename string) ([]T, error)) ([]T, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) && !required {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s upload: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	return parse(file, header.Filename)
}

// loadEvents accepts the event log as a workbook or as JSON. JSON is picked
// by a .json filename or by the content itself.
func loadEvents(f io.Reader, filename string, loc *time.Location) ([]types.EventRecord, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("events upload: %w", err)
	}
	if strings.EqualFold(filepath.Ext(filename), ".json") || dataset.IsJSON(data) {
		return dataset.LoadEventsJSON(bytes.NewReader(data), loc)
	}
	return dataset.LoadEvents(bytes.NewReader(data), loc)
}

func (s *Server) loadFailed(w http.ResponseWriter, reqLog *logrus.Entry, err error) {
	var mm *schema.MismatchError
	if errors.As(err, &mm) {
		reqLog.WithError(err).WithField("sheet", mm.Sheet).Warn("schema mismatch")
		s.metrics.ObserveRequest(statusSchemaMismatch)
		writeJSON(w, reqLog, http.StatusUnprocessableEntity, errorBody{Error: mm.Error(), Sheet: mm.Sheet, Missing: mm.Missing})
		return
	}
	reqLog.WithError(err).Warn("workbook load failed")
	s.metrics.ObserveRequest(statusBadRequest)
	writeJSON(w, reqLog, http.StatusBadRequest, errorBody{Error: err.Error()})
}

// record appends the run to history. Failures are logged only.
func (s *Server) record(reqLog *logrus.Entry, res processor.Result) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()
	rec := history.NewRecord(res, s.now())
	if err := s.store.Append(ctx, rec); err != nil {
		reqLog.WithError(err).Error("history append failed")
		return
	}
	reqLog.WithField("run_id", rec.RunID).Info("run recorded")
}

// historyBody is the /history response: the trend overview, null before the
// first run, and every run oldest first.
type historyBody struct {
	Overview *history.Overview `json:"overview"`
	Runs     []history.Record  `json:"runs"`
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "history")
	records := []history.Record{}
	if s.store != nil {
		loaded, err := s.store.Load()
		if err != nil {
			reqLog.WithError(err).Error("history load failed")
			writeJSON(w, reqLog, http.StatusInternalServerError, errorBody{Error: "history unavailable"})
			return
		}
		if loaded != nil {
			records = loaded
		}
	}
	writeJSON(w, reqLog, http.StatusOK, historyBody{Overview: history.Summarize(records), Runs: records})
}

func (s *Server) exposeMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", metrics.ContentType)
	if err := s.metrics.WriteText(w); err != nil {
		logger.New().WithRequest(r).WithError(err).Error("failed to write metrics")
	}
}

func writeJSON(w http.ResponseWriter, reqLog *logrus.Entry, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		reqLog.WithError(err).Error("failed to write response")
	}
}
