package database

import (
	"context"
	"time"

	"github.com/kamilpajak/leafcheck/internal/lifecycle"
	"github.com/sirupsen/logrus"
)

// DiagnosisStore persists diagnoses. *DB implements it.
type DiagnosisStore interface {
	CreateDiagnosis(ctx context.Context, params CreateDiagnosisParams) (*Diagnosis, error)
}

// Recorder is a lifecycle observer that stores every succeeded analysis.
type Recorder struct {
	store   DiagnosisStore
	log     *logrus.Logger
	timeout time.Duration
}

// NewRecorder creates a Recorder. Write failures are logged and never
// affect the lifecycle.
func NewRecorder(store DiagnosisStore, log *logrus.Logger) *Recorder {
	return &Recorder{store: store, log: log, timeout: 5 * time.Second}
}

// Observe implements lifecycle.Observer.
func (r *Recorder) Observe(s lifecycle.State) {
	if s.Kind != lifecycle.Succeeded || s.Model == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	d, err := r.store.CreateDiagnosis(ctx, CreateDiagnosisParams{ImageName: s.Image, Model: s.Model})
	if err != nil {
		r.log.WithError(err).WithField("image", s.Image).Warn("failed to record diagnosis")
		return
	}
	r.log.WithFields(logrus.Fields{"id": d.ID, "image": s.Image}).Debug("diagnosis recorded")
}

// Release implements lifecycle.Observer.
func (r *Recorder) Release() {}
