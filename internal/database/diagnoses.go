package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kamilpajak/leafcheck/pkg/models"
)

// defaultListLimit caps ListDiagnoses when no limit is given.
const defaultListLimit = 20

// Diagnosis is a stored, successful analysis.
type Diagnosis struct {
	ID           uuid.UUID            `json:"id" yaml:"id"`
	ImageName    string               `json:"image_name" yaml:"image_name"`
	Label        string               `json:"label" yaml:"label"`
	DisplayLabel string               `json:"display_label" yaml:"display_label"`
	Confidence   float64              `json:"confidence" yaml:"confidence"`
	IsHealthy    bool                 `json:"is_healthy" yaml:"is_healthy"`
	Risk         models.Risk          `json:"risk" yaml:"risk"`
	Model        *models.DisplayModel `json:"model" yaml:"model"`
	CreatedAt    time.Time            `json:"created_at" yaml:"created_at"`
}

// CreateDiagnosisParams contains parameters for storing a diagnosis.
type CreateDiagnosisParams struct {
	ImageName string
	Model     *models.DisplayModel
}

const diagnosisColumns = `id, image_name, label, display_label, confidence, is_healthy, risk, model, created_at`

func scanDiagnosis(row pgx.Row) (*Diagnosis, error) {
	var d Diagnosis
	var modelJSON []byte
	err := row.Scan(
		&d.ID, &d.ImageName, &d.Label, &d.DisplayLabel,
		&d.Confidence, &d.IsHealthy, &d.Risk, &modelJSON, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Model = &models.DisplayModel{}
	if err := json.Unmarshal(modelJSON, d.Model); err != nil {
		return nil, fmt.Errorf("failed to decode stored model: %w", err)
	}
	return &d, nil
}

// CreateDiagnosis stores a diagnosis and returns it with its generated ID.
func (db *DB) CreateDiagnosis(ctx context.Context, params CreateDiagnosisParams) (*Diagnosis, error) {
	if params.Model == nil {
		return nil, errors.New("diagnosis model is required")
	}
	modelJSON, err := json.Marshal(params.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}

	primary := params.Model.Prediction.Primary
	row := db.pool.QueryRow(ctx,
		`INSERT INTO diagnoses (id, image_name, label, display_label, confidence, is_healthy, risk, model)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+diagnosisColumns,
		uuid.New(), params.ImageName, primary.Label, primary.DisplayLabel,
		primary.Confidence, params.Model.Prediction.IsHealthy, string(params.Model.Risk), modelJSON,
	)
	return scanDiagnosis(row)
}

// GetDiagnosis retrieves a diagnosis by ID. It returns nil, nil when no
// row matches.
func (db *DB) GetDiagnosis(ctx context.Context, id uuid.UUID) (*Diagnosis, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = $1`,
		id,
	)
	d, err := scanDiagnosis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// ListDiagnoses returns the most recent diagnoses, newest first.
func (db *DB) ListDiagnoses(ctx context.Context, limit int) ([]Diagnosis, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	diagnoses := []Diagnosis{}
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, err
		}
		diagnoses = append(diagnoses, *d)
	}
	return diagnoses, rows.Err()
}

// DeleteDiagnosis deletes a diagnosis by ID.
func (db *DB) DeleteDiagnosis(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM diagnoses WHERE id = $1`,
		id,
	)
	return err
}
