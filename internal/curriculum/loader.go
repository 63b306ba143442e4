package curriculum

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Load reads the nomenclature and the video documents. A missing video document is
// tolerated: every video lookup then misses.
func Load(ctx context.Context, curriculumPath, videosPath string, log *logrus.Logger) (*Index, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(curriculumPath)
	if err != nil {
		return nil, fmt.Errorf("reading nomenclature %s: %w", curriculumPath, err)
	}
	grades, err := parseNomenclature(data, log)
	if err != nil {
		return nil, err
	}

	videos := make(map[string][]string)
	if videosPath != "" {
		raw, err := os.ReadFile(videosPath)
		switch {
		case os.IsNotExist(err):
			log.WithFields(logrus.Fields{
				"path": videosPath,
			}).Warn("Video document not found, video lookups will miss")
		case err != nil:
			return nil, fmt.Errorf("reading videos %s: %w", videosPath, err)
		default:
			if videos, err = parseVideos(videosPath, raw); err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"grades": len(grades),
		"videos": len(videos),
	}).Info("Curriculum loaded")

	return NewIndex(grades, videos, log), nil
}

// Loader loads the curriculum once and hands out the cached index afterwards.
// Concurrent first callers share a single load; failed loads are retried on the
// next call.
type Loader struct {
	curriculumPath string
	videosPath     string
	log            *logrus.Logger

	group singleflight.Group
	mu    sync.RWMutex
	index *Index
}

func NewLoader(curriculumPath, videosPath string, log *logrus.Logger) *Loader {
	return &Loader{
		curriculumPath: curriculumPath,
		videosPath:     videosPath,
		log:            log,
	}
}

func (l *Loader) Get(ctx context.Context) (*Index, error) {
	l.mu.RLock()
	idx := l.index
	l.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	ch := l.group.DoChan("curriculum", func() (interface{}, error) {
		l.mu.RLock()
		cached := l.index
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		// detached so one caller's cancellation does not fail the shared load
		loaded, err := Load(context.WithoutCancel(ctx), l.curriculumPath, l.videosPath, l.log)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.index = loaded
		l.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

// Reload reads the documents again and swaps the cached index when they parse. On
// failure the previous index stays in service.
func (l *Loader) Reload(ctx context.Context) (*Index, error) {
	ch := l.group.DoChan("reload", func() (interface{}, error) {
		loaded, err := Load(context.WithoutCancel(ctx), l.curriculumPath, l.videosPath, l.log)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.index = loaded
		l.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

// Paths returns the watched document paths, the video path possibly empty.
func (l *Loader) Paths() (curriculumPath, videosPath string) {
	return l.curriculumPath, l.videosPath
}
