package passageRepository

import (
	"context"

	"KeikoHub/internal/entity"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
	EnsureSchema(ctx context.Context) error
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		History:  &historyRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

func (r *repository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, queryCreateTable)
	return err
}

type Client struct {
	History interface {
		CreateRecord(ctx context.Context, record entity.PassageRecord) error
		GetRecordByID(ctx context.Context, id string) (entity.PassageRecord, error)
		ListRecords(ctx context.Context, grade string, limit int) ([]entity.PassageRecord, error)
	}

	Commit   func() error
	Rollback func() error
}

type historyRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
