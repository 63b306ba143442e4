package announcer

import (
	"fmt"
	"path"
	"strings"

	"KeikoHub/internal/entity"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	maxFileNameLength = 80
	audioExtension    = ".mp3"
)

// accentFold only covers the accents the recorded cues were named with; any other
// non-ascii letter is dropped.
var accentFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
}

func allowedFileRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == ' ' || r == '-'
}

// FileName maps a cue to the audio file recorded for it, "Ken taï ken" becoming
// "ken_tai_ken.mp3". It returns "" when nothing usable is left.
func FileName(cue string) string {
	t := transform.Chain(
		cases.Lower(language.Und),
		runes.Map(func(r rune) rune {
			if folded, ok := accentFold[r]; ok {
				return folded
			}
			return r
		}),
		runes.Remove(runes.Predicate(func(r rune) bool { return !allowedFileRune(r) })),
	)

	name, _, err := transform.String(t, cue)
	if err != nil {
		return ""
	}

	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if len(name) > maxFileNameLength {
		name = name[:maxFileNameLength]
	}
	if name == "" {
		return ""
	}
	return name + audioExtension
}

// Resolver locates cue recordings under "<base>/<Language>/<Voice>/".
type Resolver struct {
	base string
}

func NewResolver(base string) *Resolver {
	return &Resolver{base: base}
}

func (r *Resolver) Resolve(cue, voice string) (string, error) {
	if strings.TrimSpace(cue) == "" {
		return "", fmt.Errorf("%w: empty cue", ErrAudioResolution)
	}

	lang, name, ok := entity.SplitVoiceRef(voice)
	if !ok {
		return "", fmt.Errorf("%w: malformed voice %q", ErrAudioResolution, voice)
	}

	file := FileName(cue)
	if file == "" {
		return "", fmt.Errorf("%w: cue %q has no usable characters", ErrAudioResolution, cue)
	}

	return path.Join(r.base, lang, name, file), nil
}
