package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kamilpajak/leafcheck/internal/lifecycle"
	"github.com/kamilpajak/leafcheck/internal/predict"
)

// maxFormBytes leaves room for multipart framing around the largest image.
const maxFormBytes = predict.MaxImageBytes + 1<<20

// conflictResponse is returned when a submission is rejected.
type conflictResponse struct {
	Error string          `json:"error"`
	State lifecycle.State `json:"state"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, predict.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	img, err := predict.NewImage(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The analysis outlives a dropped browser connection; Reset is the
	// only way to abandon it.
	st, err := h.machine.Select(context.WithoutCancel(r.Context()), img)
	switch {
	case errors.Is(err, lifecycle.ErrAnalysisInFlight),
		errors.Is(err, lifecycle.ErrResultDisplayed),
		errors.Is(err, lifecycle.ErrStaleResponse):
		writeJSON(w, http.StatusConflict, conflictResponse{Error: err.Error(), State: st})
		return
	case err != nil:
		h.log.WithError(err).Error("analysis failed")
		writeError(w, http.StatusInternalServerError, lifecycle.GenericFailureMessage)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.machine.Reset()
	writeJSON(w, http.StatusOK, h.machine.Current())
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.machine.Current())
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emitter := NewSSEEmitter(w)
	if emitter == nil {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	obs := newStreamObserver()
	unsubscribe := h.machine.Subscribe(obs)
	defer unsubscribe()

	if err := emitter.Emit(EventState, h.machine.Current()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			if n := obs.Dropped(); n > 0 {
				h.log.WithField("dropped", n).Debug("event stream closed with dropped events")
			}
			return
		case ev := <-obs.events:
			var payload any = struct{}{}
			if ev.name == EventState {
				payload = ev.state
			}
			if err := emitter.Emit(ev.name, payload); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history is disabled, set DATABASE_URL to enable it")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	diagnoses, err := h.history.ListDiagnoses(r.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("failed to list diagnoses")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, diagnoses)
}
