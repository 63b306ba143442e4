package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"KeikoHub/internal/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Synthesizer renders text with a provider voice.
type Synthesizer interface {
	GenerateAudio(ctx context.Context, voiceID, text string) ([]byte, error)
}

// Batch writes one recording per cue under <Dir>/<Language>/<Voice>/.
type Batch struct {
	Dir         string
	Overwrite   bool
	Concurrency int
	// FileName maps a cue to its recording file name; cues it maps to "" are skipped.
	FileName func(cue string) string
	// Speech maps a cue to the text actually sent for synthesis.
	Speech func(language, cue string) string
}

type BatchReport struct {
	Written []string
	Skipped []string
	Failed  map[string]error
}

func (b Batch) Run(ctx context.Context, tts Synthesizer, voice entity.Voice, cues []string, log *logrus.Logger) (BatchReport, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if b.FileName == nil {
		return BatchReport{}, errors.New("batch needs a file naming function")
	}

	dir := filepath.Join(b.Dir, voice.Language, voice.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BatchReport{}, fmt.Errorf("creating %s: %w", dir, err)
	}

	var (
		mu     sync.Mutex
		report = BatchReport{Failed: make(map[string]error)}
	)

	g, gctx := errgroup.WithContext(ctx)
	limit := b.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for _, cue := range cues {
		name := b.FileName(cue)
		if name == "" {
			continue
		}
		target := filepath.Join(dir, name)

		if !b.Overwrite {
			if _, err := os.Stat(target); err == nil {
				report.Skipped = append(report.Skipped, target)
				continue
			}
		}

		g.Go(func() error {
			text := cue
			if b.Speech != nil {
				text = b.Speech(voice.Language, cue)
			}

			data, err := tts.GenerateAudio(gctx, voice.ProviderID, text)
			if err == nil {
				err = os.WriteFile(target, data, 0o644)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.WithFields(logrus.Fields{
					"cue":   cue,
					"voice": voice.Ref(),
					"error": err.Error(),
				}).Warn("Cue synthesis failed")
				report.Failed[cue] = err
				return nil
			}
			report.Written = append(report.Written, target)
			return nil
		})
	}

	err := g.Wait()
	return report, err
}
