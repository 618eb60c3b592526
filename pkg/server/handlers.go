package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jpfielding/quadpix.go/pkg/history"
	"github.com/jpfielding/quadpix.go/pkg/imaging"
	"github.com/jpfielding/quadpix.go/pkg/quadpix"
)

// processStats is the structured side-channel returned in the
// X-Processing-Stats header (and as the analyze response body).
type processStats struct {
	ProcessingTime   float64 `json:"processing_time"`
	CompressionRatio float64 `json:"compression_ratio"`
	NodeCount        int     `json:"node_count"`
	LeafCount        int     `json:"leaf_count"`
	MaxDepth         int     `json:"max_depth"`
	Threshold        int     `json:"threshold"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Operation        string  `json:"operation,omitempty"`
	Alpha            float64 `json:"alpha,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "QuadPix image processing API",
		"version": s.version,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":     "ok",
		"goroutines": runtime.NumGoroutine(),
	}
	if cpus, err := cpu.Counts(true); err == nil {
		health["cpus"] = cpus
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		health["mem_used_percent"] = vm.UsedPercent
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if err := s.parseUploadForm(r); err != nil {
		writeError(w, ctx, err)
		return
	}
	var dir quadpix.Direction
	var opName string
	switch r.FormValue("operation") {
	case "horizontal":
		dir, opName = quadpix.Horizontal, quadpix.OpFlipHorizontal
	case "vertical":
		dir, opName = quadpix.Vertical, quadpix.OpFlipVertical
	default:
		writeError(w, ctx, fmt.Errorf("%w: operation must be 'horizontal' or 'vertical'",
			quadpix.ErrInvalidArgument))
		return
	}
	threshold, err := s.formThreshold(r)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	buf, err := s.formImage(r, "file")
	if err != nil {
		writeError(w, ctx, err)
		return
	}

	tree, err := s.buildTree(buf, threshold)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	flipped, err := quadpix.Flip(tree, dir)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	out, err := quadpix.Reconstruct(flipped)
	if err != nil {
		writeError(w, ctx, err)
		return
	}

	stats, err := quadpix.Analyze(flipped)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	ps := newProcessStats(stats, out, opName, 0, start)
	s.record(ctx, ps)
	writePNG(w, ctx, out, ps)
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if err := s.parseUploadForm(r); err != nil {
		writeError(w, ctx, err)
		return
	}
	op := quadpix.Operation(r.FormValue("operation"))
	if op == "" {
		op = quadpix.OpBlend
	}
	alpha := 0.5
	if v := r.FormValue("alpha"); v != "" {
		var err error
		if alpha, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, ctx, fmt.Errorf("%w: alpha %q is not a number",
				quadpix.ErrInvalidArgument, v))
			return
		}
	}
	threshold, err := s.formThreshold(r)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	compact := s.cfg.Compact
	if v := r.FormValue("compact"); v != "" {
		compact, _ = strconv.ParseBool(v)
	}

	bufA, err := s.formImage(r, "file1")
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	bufB, err := s.formImage(r, "file2")
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	if s.cfg.ResizePolicy == ResizeMin {
		bufA, bufB = imaging.ResizeToCommon(bufA, bufB)
	}

	treeA, err := s.buildTree(bufA, threshold)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	treeB, err := s.buildTree(bufB, threshold)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	result, err := quadpix.Overlay(treeA, treeB, op, alpha)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	if compact {
		result = quadpix.Compact(result)
	}
	out, err := quadpix.Reconstruct(result)
	if err != nil {
		writeError(w, ctx, err)
		return
	}

	stats, err := quadpix.Analyze(result)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	ps := newProcessStats(stats, out, "overlay-"+string(op), alpha, start)
	s.record(ctx, ps)
	writePNG(w, ctx, out, ps)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if err := s.parseUploadForm(r); err != nil {
		writeError(w, ctx, err)
		return
	}
	threshold, err := s.formThreshold(r)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	buf, err := s.formImage(r, "file")
	if err != nil {
		writeError(w, ctx, err)
		return
	}

	tree, err := s.buildTree(buf, threshold)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	stats, err := quadpix.Analyze(tree)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	ps := newProcessStats(stats, buf, quadpix.OpAnalyze, 0, start)
	s.record(ctx, ps)
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	recs, err := s.records.Recent(r.Context(), s.cfg.HistoryLimit)
	if err != nil {
		writeError(w, r.Context(), err)
		return
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) buildTree(buf *quadpix.PixelBuffer, threshold int) (*quadpix.Tree, error) {
	if s.cfg.Parallel {
		return quadpix.BuildParallel(buf, threshold)
	}
	return quadpix.Build(buf, threshold)
}

func (s *Server) parseUploadForm(r *http.Request) error {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return fmt.Errorf("%w: multipart form: %v", quadpix.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) formThreshold(r *http.Request) (int, error) {
	v := r.FormValue("threshold")
	if v == "" {
		return s.cfg.DefaultThreshold, nil
	}
	threshold, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: threshold %q is not an integer", quadpix.ErrInvalidInput, v)
	}
	return threshold, nil
}

func (s *Server) formImage(r *http.Request, field string) (*quadpix.PixelBuffer, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing upload %q", quadpix.ErrInvalidInput, field)
	}
	defer file.Close()
	return decodeUpload(file, field)
}

func decodeUpload(file multipart.File, field string) (*quadpix.PixelBuffer, error) {
	buf, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: upload %q is not a decodable image: %v",
			quadpix.ErrInvalidInput, field, err)
	}
	return buf, nil
}

func newProcessStats(stats quadpix.Stats, buf *quadpix.PixelBuffer, op string, alpha float64, start time.Time) processStats {
	return processStats{
		ProcessingTime:   time.Since(start).Seconds(),
		CompressionRatio: stats.CompressionRatio,
		NodeCount:        stats.NodeCount,
		LeafCount:        stats.LeafCount,
		MaxDepth:         stats.MaxDepth,
		Threshold:        stats.Threshold,
		Width:            buf.W,
		Height:           buf.H,
		Operation:        op,
		Alpha:            alpha,
	}
}

func (s *Server) record(ctx context.Context, ps processStats) {
	if s.records == nil {
		return
	}
	rec := &history.Record{
		Operation:        ps.Operation,
		Threshold:        ps.Threshold,
		Alpha:            ps.Alpha,
		Width:            ps.Width,
		Height:           ps.Height,
		NodeCount:        ps.NodeCount,
		CompressionRatio: ps.CompressionRatio,
		DurationMS:       int64(ps.ProcessingTime * 1000),
	}
	if err := s.records.Create(ctx, rec); err != nil {
		slog.WarnContext(ctx, "history record failed", "error", err)
	}
}

func writePNG(w http.ResponseWriter, ctx context.Context, buf *quadpix.PixelBuffer, ps processStats) {
	statsJSON, err := json.Marshal(ps)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Processing-Stats", string(statsJSON))
	w.Header().Set("X-Processing-Time", strconv.FormatFloat(ps.ProcessingTime, 'f', 4, 64))
	w.Header().Set("X-Compression-Ratio", strconv.FormatFloat(ps.CompressionRatio, 'f', 4, 64))
	if err := imaging.EncodePNG(w, buf); err != nil {
		slog.ErrorContext(ctx, "png encode failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, ctx context.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, quadpix.ErrInvalidInput),
		errors.Is(err, quadpix.ErrInvalidArgument),
		errors.Is(err, quadpix.ErrDimensionMismatch):
		status = http.StatusBadRequest
	}
	slog.WarnContext(ctx, "request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
