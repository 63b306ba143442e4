package passageRepository

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMakePassageRecord(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := &historyRepository{log: log}

	completed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	record := r.makePassageRecord(PassageRecordDB{
		ID:              sql.NullString{String: "01ABC", Valid: true},
		Grade:           sql.NullString{String: "1er Dan", Valid: true},
		Mode:            sql.NullString{String: "aleatoire", Valid: true},
		Voice:           sql.NullString{String: "French/Male1", Valid: true},
		Duration:        sql.NullInt64{Int64: 10, Valid: true},
		TotalTechniques: sql.NullInt64{Int64: 2, Valid: true},
		IncludeRandori:  sql.NullBool{Bool: true, Valid: true},
		Techniques:      []byte(`[{"attack":"Shomen uchi","technique":"Ikkyo","position":"Tachiwaza","order":1},{"attack":"Randori","technique":"Randori","position":"Randori","order":2}]`),
		CompletedAt:     completed,
	})

	assert.Equal(t, "01ABC", record.ID)
	assert.Equal(t, entity.PassageModeRandom, record.Mode)
	assert.Equal(t, 2, record.TotalTechniques)
	assert.True(t, record.IncludeRandori)
	assert.Equal(t, completed, record.CompletedAt)
	if assert.Len(t, record.Techniques, 2) {
		assert.Equal(t, entity.StandingStance, record.Techniques[0].Position)
		assert.True(t, record.Techniques[1].IsRandori())
	}
}

func TestMakePassageRecord_BadTechniques(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := &historyRepository{log: log}

	record := r.makePassageRecord(PassageRecordDB{
		ID:         sql.NullString{String: "x", Valid: true},
		Techniques: []byte("not json"),
	})
	assert.Equal(t, "x", record.ID)
	assert.Empty(t, record.Techniques)
}
