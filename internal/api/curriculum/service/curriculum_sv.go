package curriculumService

import (
	"context"
	"strings"

	"KeikoHub/internal/api/curriculum"
	curriculumCore "KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"
	contextPkg "KeikoHub/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *curriculumService) index(ctx context.Context) (*curriculumCore.Index, error) {
	idx, err := s.indexes.Get(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Curriculum could not be loaded")
		return nil, curriculum.ErrCurriculumUnavailable
	}
	return idx, nil
}

func (s *curriculumService) gradeIndex(ctx context.Context, grade string) (*curriculumCore.Index, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	if !idx.HasGrade(grade) {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"grade":      grade,
		}).Debug("Unknown grade requested")
		return nil, curriculum.ErrGradeNotFound
	}
	return idx, nil
}

func (s *curriculumService) position(idx *curriculumCore.Index, grade, label string) (entity.Position, error) {
	position, ok := curriculumCore.ParsePosition(label)
	if !ok {
		return "", curriculum.ErrInvalidPosition
	}
	for _, p := range idx.PositionsForGrade(grade) {
		if p == position {
			return position, nil
		}
	}
	return "", curriculum.ErrPositionNotInGrade
}

func (s *curriculumService) GetGrades(ctx context.Context) ([]string, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Grades(), nil
}

func (s *curriculumService) GetPositions(ctx context.Context, grade string) ([]entity.Position, error) {
	idx, err := s.gradeIndex(ctx, grade)
	if err != nil {
		return nil, err
	}
	return idx.PositionsForGrade(grade), nil
}

func (s *curriculumService) GetAttacks(ctx context.Context, grade string, position string) (entity.Position, []string, error) {
	idx, err := s.gradeIndex(ctx, grade)
	if err != nil {
		return "", nil, err
	}
	p, err := s.position(idx, grade, position)
	if err != nil {
		return "", nil, err
	}
	return p, idx.AttacksFor(grade, p), nil
}

func (s *curriculumService) GetTechniques(ctx context.Context, grade string, position string, attack string) (entity.Position, []string, error) {
	idx, err := s.gradeIndex(ctx, grade)
	if err != nil {
		return "", nil, err
	}
	p, err := s.position(idx, grade, position)
	if err != nil {
		return "", nil, err
	}
	return p, idx.TechniquesFor(grade, p, strings.TrimSpace(attack)), nil
}

func (s *curriculumService) GetVideos(ctx context.Context, attack string, technique string) ([]string, error) {
	attack, technique = strings.TrimSpace(attack), strings.TrimSpace(technique)
	if attack == "" || technique == "" {
		return nil, curriculum.ErrMissingVideoQuery
	}

	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}

	videos := idx.VideoRefsFor(attack, technique)
	if videos == nil {
		videos = []string{}
	}
	return videos, nil
}

func (s *curriculumService) GetVoices(ctx context.Context) ([]entity.Voice, error) {
	voices, err := s.voices.All()
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Voice catalog could not be loaded")
		return nil, curriculum.ErrVoicesUnavailable
	}
	return voices, nil
}
