package entity

import "strings"

// Voice is one recorded voice available for announcements.
type Voice struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Language string `json:"language" yaml:"language"`
	Gender   string `json:"gender" yaml:"gender"`

	// ProviderID is the speech synthesis voice the recordings were generated with.
	ProviderID string `json:"-" yaml:"provider_id"`
}

// Ref is the "<Language>/<Voice>" selector used to resolve audio cues.
func (v Voice) Ref() string {
	return v.Language + "/" + v.ID
}

var DefaultVoices = []Voice{
	{ID: "Male1", Label: "Voix masculine 1", Language: "French", Gender: "masculin", ProviderID: "MIuhjMla9d1GsjEn0qCp"},
	{ID: "Male2", Label: "Voix masculine 2", Language: "French", Gender: "masculin", ProviderID: "zNijNwkR2nhHrbrmJITT"},
	{ID: "Male3", Label: "Voix masculine 3", Language: "French", Gender: "masculin", ProviderID: "w4FDa0ya9UrortMOEDXi"},
	{ID: "Female1", Label: "Voix féminine 1", Language: "French", Gender: "féminin", ProviderID: "Da9VfudgKUvFOKayCiue"},
	{ID: "Female2", Label: "Voix féminine 2", Language: "French", Gender: "féminin", ProviderID: "YxrwjAKoUKULGd0g8K9Y"},
	{ID: "Female3", Label: "Voix féminine 3", Language: "French", Gender: "féminin", ProviderID: "12CHcREbuPdJY02VY7zT"},
}

// SplitVoiceRef splits "<Language>/<Voice>". ok is false for anything else.
func SplitVoiceRef(ref string) (language, voice string, ok bool) {
	parts := strings.Split(ref, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	language = strings.TrimSpace(parts[0])
	voice = strings.TrimSpace(parts[1])
	if language == "" || voice == "" || strings.Contains(ref, "..") {
		return "", "", false
	}
	return language, voice, true
}
