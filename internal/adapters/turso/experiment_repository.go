package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/rtgscope/internal/domain"
	"github.com/emiliopalmerini/rtgscope/internal/util"
)

const experimentColumns = `id, acquisition_date, user_id, microscope, objective,
	numerical_aperture, pixel_size_xy, pixel_size_z, channels, raw_path, eln_id, created_at`

type ExperimentRepository struct {
	db *sql.DB
}

func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

func (r *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	channels := experiment.Channels
	if channels == nil {
		channels = []string{}
	}
	channelsJSON, err := json.Marshal(channels)
	if err != nil {
		return fmt.Errorf("failed to encode channels: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO experiments (`+experimentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		experiment.ID,
		experiment.AcquisitionDate.UTC().Format(time.RFC3339),
		experiment.UserID,
		experiment.Microscope,
		experiment.Objective,
		util.NullFloat64(experiment.NumericalAperture),
		util.NullFloat64(experiment.PixelSizeXY),
		util.NullFloat64(experiment.PixelSizeZ),
		string(channelsJSON),
		experiment.RawPath,
		experiment.ELNID,
		experiment.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}
	return nil
}

func (r *ExperimentRepository) GetByID(ctx context.Context, id string) (*domain.Experiment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE id = ?`, id)
	exp, err := scanExperiment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return exp, nil
}

func (r *ExperimentRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+experimentColumns+` FROM experiments ORDER BY acquisition_date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*domain.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		experiments = append(experiments, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	return experiments, nil
}

func (r *ExperimentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM experiments WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(s scanner) (*domain.Experiment, error) {
	var (
		exp             domain.Experiment
		acquisitionDate string
		createdAt       string
		channels        string
	)
	var na, pixelXY, pixelZ sql.NullFloat64

	if err := s.Scan(
		&exp.ID,
		&acquisitionDate,
		&exp.UserID,
		&exp.Microscope,
		&exp.Objective,
		&na,
		&pixelXY,
		&pixelZ,
		&channels,
		&exp.RawPath,
		&exp.ELNID,
		&createdAt,
	); err != nil {
		return nil, err
	}

	exp.AcquisitionDate = util.ParseTimeRFC3339(acquisitionDate)
	exp.CreatedAt = util.ParseTimeRFC3339(createdAt)
	exp.NumericalAperture = util.NullFloat64ToPtr(na)
	exp.PixelSizeXY = util.NullFloat64ToPtr(pixelXY)
	exp.PixelSizeZ = util.NullFloat64ToPtr(pixelZ)

	if err := json.Unmarshal([]byte(channels), &exp.Channels); err != nil {
		return nil, fmt.Errorf("decode channels of %s: %w", exp.ID, err)
	}
	return &exp, nil
}
