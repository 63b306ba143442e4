package passageRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"KeikoHub/internal/api/passage"
	"KeikoHub/internal/entity"
	contextPkg "KeikoHub/pkg/context"

	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const maxHistoryLimit = 100

type PassageRecordDB struct {
	ID              sql.NullString `db:"id"`
	Grade           sql.NullString `db:"grade"`
	Mode            sql.NullString `db:"mode"`
	Voice           sql.NullString `db:"voice"`
	Duration        sql.NullInt64  `db:"duration"`
	TotalTechniques sql.NullInt64  `db:"total_techniques"`
	IncludeRandori  sql.NullBool   `db:"include_randori"`
	Techniques      []byte         `db:"techniques"`
	CreatedAt       time.Time      `db:"created_at"`
	CompletedAt     time.Time      `db:"completed_at"`
}

func (r *historyRepository) CreateRecord(ctx context.Context, record entity.PassageRecord) error {
	requestID := contextPkg.GetRequestID(ctx)

	techniques, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(record.Techniques)
	if err != nil {
		return err
	}

	argsKV := map[string]interface{}{
		"id":               record.ID,
		"grade":            record.Grade,
		"mode":             string(record.Mode),
		"voice":            record.Voice,
		"duration":         record.Duration,
		"total_techniques": record.TotalTechniques,
		"include_randori":  record.IncludeRandori,
		"techniques":       string(techniques),
		"created_at":       record.CreatedAt,
		"completed_at":     record.CompletedAt,
	}

	query, args, err := sqlx.Named(queryCreateRecord, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateRecord")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"passage_id": record.ID,
			"error":      err.Error(),
		}).Error("Database error when recording passage")
		return err
	}

	return nil
}

func (r *historyRepository) GetRecordByID(ctx context.Context, id string) (entity.PassageRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var record PassageRecordDB

	query, args, err := sqlx.Named(queryGetRecordByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordByID named query preparation err")
		return entity.PassageRecord{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"passage_id": id,
			}).Warn("GetRecordByID no rows found")
			return entity.PassageRecord{}, passage.ErrPassageNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecordByID execution err")
		return entity.PassageRecord{}, err
	}

	return r.makePassageRecord(record), nil
}

func (r *historyRepository) ListRecords(ctx context.Context, grade string, limit int) ([]entity.PassageRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var records []PassageRecordDB

	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	query, args, err := sqlx.Named(queryListRecords, map[string]interface{}{
		"grade": grade,
		"limit": limit,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListRecords named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &records, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListRecords execution err")
		return nil, err
	}

	result := make([]entity.PassageRecord, 0, len(records))
	for _, record := range records {
		result = append(result, r.makePassageRecord(record))
	}
	return result, nil
}

func (r *historyRepository) makePassageRecord(record PassageRecordDB) entity.PassageRecord {
	var techniques []entity.Technique
	if len(record.Techniques) > 0 {
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(record.Techniques, &techniques); err != nil {
			r.log.WithFields(logrus.Fields{
				"passage_id": record.ID.String,
				"error":      err.Error(),
			}).Warn("Stored techniques could not be decoded")
		}
	}

	return entity.PassageRecord{
		ID:              record.ID.String,
		Grade:           record.Grade.String,
		Mode:            entity.PassageMode(record.Mode.String),
		Voice:           record.Voice.String,
		Duration:        int(record.Duration.Int64),
		TotalTechniques: int(record.TotalTechniques.Int64),
		IncludeRandori:  record.IncludeRandori.Bool,
		Techniques:      techniques,
		CreatedAt:       record.CreatedAt,
		CompletedAt:     record.CompletedAt,
	}
}
