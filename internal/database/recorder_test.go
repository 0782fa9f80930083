package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kamilpajak/leafcheck/internal/lifecycle"
	"github.com/kamilpajak/leafcheck/internal/logging"
	"github.com/kamilpajak/leafcheck/pkg/models"
	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	created []CreateDiagnosisParams
	err     error
}

func (f *fakeStore) CreateDiagnosis(_ context.Context, params CreateDiagnosisParams) (*Diagnosis, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, params)
	return &Diagnosis{ID: uuid.New(), ImageName: params.ImageName}, nil
}

func TestRecorder_StoresSucceededOnly(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, logging.Discard())
	model := &models.DisplayModel{Risk: models.RiskLow}

	r.Observe(lifecycle.State{Kind: lifecycle.Submitting, Image: "leaf.jpg"})
	r.Observe(lifecycle.State{Kind: lifecycle.Pending, Image: "leaf.jpg"})
	r.Observe(lifecycle.State{Kind: lifecycle.Failed, Image: "leaf.jpg", Message: "boom"})
	r.Observe(lifecycle.State{Kind: lifecycle.Succeeded, Image: "leaf.jpg", Model: model})
	r.Release()
	r.Observe(lifecycle.State{Kind: lifecycle.Idle})

	if assert.Len(t, store.created, 1) {
		assert.Equal(t, "leaf.jpg", store.created[0].ImageName)
		assert.Same(t, model, store.created[0].Model)
	}
}

func TestRecorder_StoreErrorIsSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	r := NewRecorder(store, logging.Discard())

	assert.NotPanics(t, func() {
		r.Observe(lifecycle.State{Kind: lifecycle.Succeeded, Image: "leaf.jpg", Model: &models.DisplayModel{}})
	})
}

func TestRecorder_ImplementsObserver(t *testing.T) {
	var _ lifecycle.Observer = NewRecorder(&fakeStore{}, logging.Discard())
	var _ DiagnosisStore = (*DB)(nil)
}
