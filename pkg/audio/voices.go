package audio

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"KeikoHub/internal/entity"

	"gopkg.in/yaml.v3"
)

var ErrUnknownVoice = errors.New("unknown voice")

// VoiceCatalog lists the voices recordings exist for. The catalog file is read once;
// without one the built-in French voices are used.
type VoiceCatalog struct {
	path string

	once   sync.Once
	voices []entity.Voice
	err    error
}

func NewVoiceCatalog(path string) *VoiceCatalog {
	return &VoiceCatalog{path: path}
}

func (c *VoiceCatalog) All() ([]entity.Voice, error) {
	c.once.Do(func() {
		c.voices, c.err = loadVoices(c.path)
	})
	if c.err != nil {
		return nil, c.err
	}
	out := make([]entity.Voice, len(c.voices))
	copy(out, c.voices)
	return out, nil
}

// Find looks a voice up by its "<Language>/<Voice>" reference.
func (c *VoiceCatalog) Find(ref string) (entity.Voice, error) {
	language, id, ok := entity.SplitVoiceRef(ref)
	if !ok {
		return entity.Voice{}, fmt.Errorf("%w: malformed reference %q", ErrUnknownVoice, ref)
	}

	voices, err := c.All()
	if err != nil {
		return entity.Voice{}, err
	}
	for _, v := range voices {
		if strings.EqualFold(v.Language, language) && strings.EqualFold(v.ID, id) {
			return v, nil
		}
	}
	return entity.Voice{}, fmt.Errorf("%w: %s", ErrUnknownVoice, ref)
}

func loadVoices(path string) ([]entity.Voice, error) {
	if path == "" {
		return defaultVoices(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultVoices(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading voices %s: %w", path, err)
	}

	var voices []entity.Voice
	if err := yaml.Unmarshal(data, &voices); err != nil {
		return nil, fmt.Errorf("parsing voices %s: %w", path, err)
	}

	out := voices[:0]
	for _, v := range voices {
		if _, _, ok := entity.SplitVoiceRef(v.Ref()); ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("voices %s: no usable voice", path)
	}
	return out, nil
}

func defaultVoices() []entity.Voice {
	out := make([]entity.Voice, len(entity.DefaultVoices))
	copy(out, entity.DefaultVoices)
	return out
}
