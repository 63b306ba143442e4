package passageService

import (
	"context"
	"errors"
	"strings"
	"time"

	"KeikoHub/internal/announcer"
	"KeikoHub/internal/api/passage"
	curriculumCore "KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"
	passageCore "KeikoHub/internal/passage"
	"KeikoHub/internal/session"
	contextPkg "KeikoHub/pkg/context"
	jwtPkg "KeikoHub/pkg/jwt"
	"KeikoHub/pkg/redis"

	"github.com/sirupsen/logrus"
)

const recordTimeout = 10 * time.Second

func (s *passageService) index(ctx context.Context) (*curriculumCore.Index, error) {
	idx, err := s.indexes.Get(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Curriculum could not be loaded")
		return nil, passage.ErrCurriculumUnavailable
	}
	return idx, nil
}

func (s *passageService) GeneratePassage(ctx context.Context, req passage.GeneratePassageRequest) (passage.PassageResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	grade := strings.TrimSpace(req.Grade)

	idx, err := s.index(ctx)
	if err != nil {
		return passage.PassageResponse{}, err
	}
	if !idx.HasGrade(grade) {
		return passage.PassageResponse{}, passage.ErrGradeNotFound
	}

	config := req.Config.WithDefaults()
	if _, err := s.voices.Find(config.Voice); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"voice":      config.Voice,
		}).Warn("Unknown voice requested")
		return passage.PassageResponse{}, passage.ErrUnknownVoice
	}

	filters := entity.PassageFilters{
		Attacks:        req.Filters.Attacks,
		Techniques:     req.Filters.Techniques,
		IncludeWeapons: req.Filters.IncludeWeapons,
		IncludeRandori: req.Filters.IncludeRandori,
	}
	for _, label := range req.Filters.Positions {
		position, ok := curriculumCore.ParsePosition(label)
		if !ok {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"position":   label,
			}).Warn("Unknown position filter")
			return passage.PassageResponse{}, passage.ErrInvalidPosition
		}
		if !filters.HasPosition(position) {
			filters.Positions = append(filters.Positions, position)
		}
	}

	generated, err := s.opts.NewGenerator(idx, s.log).Generate(grade, filters, config)
	if err != nil {
		return passage.PassageResponse{}, err
	}

	if err := s.cache.SetPassage(ctx, generated, s.opts.PassageTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"passage_id": generated.ID,
			"error":      err.Error(),
		}).Error("Failed to cache generated passage")
		return passage.PassageResponse{}, err
	}

	ticket, expiresAt, err := jwtPkg.SignTicket(generated.ID, s.opts.TicketTTL)
	if err != nil {
		// the passage stays usable over plain HTTP without a live session
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Passage ticket not issued")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"passage_id": generated.ID,
		"grade":      grade,
		"mode":       generated.Mode,
		"techniques": len(generated.Techniques),
	}).Info("Passage generated")

	return passage.PassageResponse{
		Passage: generated,
		Summary: passage.PassageSummaryResponse{
			TotalTechniques:   len(generated.Techniques),
			EstimatedCapacity: passageCore.EstimateCapacity(config),
			Duration:          s.utils.FormatClock(generated.Duration * 60),
			IncludeRandori:    filters.IncludeRandori,
		},
		Ticket:          ticket,
		TicketExpiresAt: expiresAt,
	}, nil
}

func (s *passageService) GetPassage(ctx context.Context, id string) (*entity.Passage, error) {
	p, err := s.cache.GetPassage(ctx, id)
	if errors.Is(err, redis.ErrPassageNotFound) {
		return nil, passage.ErrPassageNotFound
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"passage_id": id,
			"error":      err.Error(),
		}).Error("Failed to read passage from cache")
		return nil, err
	}
	return p, nil
}

func (s *passageService) ExportPassage(ctx context.Context, id string) (string, []byte, error) {
	p, err := s.GetPassage(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return passageCore.ExportFileName(p), []byte(passageCore.FormatText(p)), nil
}

// UploadExport stores the export of a passage and remembers where, dropping the copy
// it supersedes.
func (s *passageService) UploadExport(ctx context.Context, id string) (passage.ExportResponse, error) {
	if s.s3 == nil {
		return passage.ExportResponse{}, passage.ErrExportUnavailable
	}
	requestID := contextPkg.GetRequestID(ctx)

	p, err := s.GetPassage(ctx, id)
	if err != nil {
		return passage.ExportResponse{}, err
	}
	fileName := passageCore.ExportFileName(p)

	location, err := s.s3.UploadExport(ctx, fileName, []byte(passageCore.FormatText(p)), "text/plain; charset=utf-8")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"passage_id": id,
			"error":      err.Error(),
		}).Error("Failed to upload passage export")
		return passage.ExportResponse{}, err
	}

	previous := p.ExportLocation
	p.ExportLocation = location
	if err := s.cache.SetPassage(ctx, p, s.opts.PassageTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"passage_id": id,
			"error":      err.Error(),
		}).Warn("Failed to remember export location")
	}
	if previous != "" && previous != location {
		s.deleteExport(ctx, id, previous)
	}

	url, err := s.s3.PresignUrl(location)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"passage_id": id,
			"error":      err.Error(),
		}).Warn("Failed to presign passage export")
	}

	return passage.ExportResponse{
		FileName: fileName,
		Location: location,
		URL:      url,
	}, nil
}

// DiscardPassage ends the live session of a passage and forgets it along with its
// stored export. The history keeps completed passages.
func (s *passageService) DiscardPassage(ctx context.Context, id string) error {
	p, err := s.GetPassage(ctx, id)
	if err != nil {
		return err
	}

	if sess, ok := s.sessions.Get(id); ok {
		s.CloseSession(sess)
	}

	if err := s.cache.DeletePassage(ctx, id); err != nil {
		return err
	}
	if p.ExportLocation != "" && s.s3 != nil {
		s.deleteExport(ctx, id, p.ExportLocation)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"passage_id": id,
	}).Info("Passage discarded")
	return nil
}

func (s *passageService) deleteExport(ctx context.Context, id, location string) {
	if err := s.s3.DeleteFile(location); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"passage_id": id,
			"location":   location,
			"error":      err.Error(),
		}).Warn("Failed to delete stored export")
	}
}

func (s *passageService) GetHistory(ctx context.Context, req passage.HistoryRequest) ([]entity.PassageRecord, error) {
	if s.repo == nil {
		return nil, passage.ErrHistoryUnavailable
	}

	client, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	records, err := client.History.ListRecords(ctx, strings.TrimSpace(req.Grade), req.Limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RecordCompletion marks the cached passage completed and appends it to the history.
func (s *passageService) RecordCompletion(ctx context.Context, p *entity.Passage, summary entity.PassageSummary) error {
	requestID := contextPkg.GetRequestID(ctx)
	now := time.Now()

	completed := *p
	if completed.CompletedAt == nil {
		completed.CompletedAt = &now
	}
	if cached, err := s.cache.GetPassage(ctx, p.ID); err == nil {
		completed.ExportLocation = cached.ExportLocation
	}

	if err := s.cache.SetPassage(ctx, &completed, s.opts.PassageTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"passage_id": p.ID,
			"error":      err.Error(),
		}).Warn("Failed to mark cached passage completed")
	}

	if s.repo == nil {
		return nil
	}

	client, err := s.repo.NewClient(true)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = client.Rollback()
		}
	}()

	if err = client.History.CreateRecord(ctx, entity.NewPassageRecord(&completed, summary, now)); err != nil {
		return err
	}
	if err = client.Commit(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"passage_id": p.ID,
		"grade":      p.Grade,
	}).Info("Passage completion recorded")
	return nil
}

// OpenSession prepares the live session of a cached passage and registers it,
// replacing any session already playing the same passage. The caller starts it.
func (s *passageService) OpenSession(ctx context.Context, id string, audio announcer.AudioPlayer, emit func(session.Event) error) (*session.Session, error) {
	p, err := s.GetPassage(ctx, id)
	if err != nil {
		return nil, err
	}
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}

	requestID := contextPkg.GetRequestID(ctx)
	sess := session.New(session.Config{
		Passage:  p,
		Voices:   announcer.UniformVoices(p.Voice),
		Audio:    audio,
		Resolver: s.resolver,
		Splitter: idx.SplitWeaponKey,
		Emit:     emit,
		OnComplete: func(done *entity.Passage, summary entity.PassageSummary) {
			base := contextPkg.WithPassageID(contextPkg.WithRequestID(context.Background(), requestID), done.ID)
			recordCtx, cancel := context.WithTimeout(base, recordTimeout)
			defer cancel()
			if err := s.RecordCompletion(recordCtx, done, summary); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"passage_id": done.ID,
					"error":      err.Error(),
				}).Error("Failed to record passage completion")
			}
		},
		TickInterval: s.opts.TickInterval,
	}, s.log)

	s.sessions.Register(sess)
	return sess, nil
}

func (s *passageService) CloseSession(sess *session.Session) {
	sess.Close()
	s.sessions.Remove(sess)
}
