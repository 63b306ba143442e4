package announcer

import "strings"

// frenchPronunciations spells cues the way a French synthetic voice should read
// them. Cues missing here are spoken as written.
var frenchPronunciations = map[string]string{
	"Omote":                        "Omotè",
	"Ura":                          "Oura",
	"Nikyo":                        "Nikkyo",
	"Irimi nage":                   "Irimi nagué",
	"Shiho nage":                   "Shiho nagué",
	"Kote gaeshi":                  "Koté gaéshi",
	"Tenchi nage":                  "Tentchi nagué",
	"Uchi kaiten nage":             "Utchi kaïtèn nagué",
	"Soto kaiten nage":             "Soto kaïtèn nagué",
	"Koshi nage":                   "Koshi nagué",
	"Kokyu nage":                   "Kokyou nagué",
	"Sokumen irimi nage":           "Sokoumen irimi nagué",
	"Sumi otoshi":                  "Soumi otoshi",
	"Aiki otoshi":                  "Aïki otoshi",
	"Kubi nage":                    "Koubi nagué",
	"Hiji kime osae":               "Hiji kimé ossaé",
	"Ude garami":                   "Oudé garami",
	"Ai hanmi katate dori":         "Aï hanmi kataté dori",
	"Katate dori":                  "Kataté dori",
	"Katate ryote dori":            "Kataté ryoté dori",
	"Ryote dori":                   "Ryoté dori",
	"Muna dori":                    "Mouna dori",
	"Kata dori men uchi":           "Kata dori men utchi",
	"Mae ryo kata dori":            "Maé ryo kata dori",
	"Ushiro ryote dori":            "Oushiro ryoté dori",
	"Ushiro katate dori kubishime": "Oushiro kataté dori koubishimé",
	"Ushiro eri dori":              "Oushiro éri dori",
	"Ushiro ryo kata dori":         "Oushiro ryo kata dori",
	"Shomen uchi":                  "Shomèn utchi",
	"Yokomen uchi":                 "Yokomèn utchi",
	"Chudan tsuki":                 "Tchoudan tsuki",
	"Jodan tsuki":                  "Yodan tsuki",
	"Ken tai ken":                  "Ken taï ken",
	"Jo tai jo":                    "Djo taï Djo",
	"Jo dori":                      "Djo dori",
	"Jo nage":                      "Djo nagué",
	"Tachi waza":                   "Tatchi waza",
	"Suwari waza":                  "Souwari waza",
	"Hanmi handachi waza":          "Hanmi handatchi waza",
	"Kumijo":                       "KoumiDjo",
	"Gyaku hanmi katate dori":      "Gyakou hanmi kataté dori",
	"Naname kokyu nage":            "Nanamé kokyou nagué",
	"Morote dori":                  "Moroté dori",
	"Tachi dori":                   "Tatchi dori",
	"Jiyu waza":                    "Djiyou waza",
	"Gyaku Yokomen":                "Gyakou yokomèn",
}

// SpeechText returns the text to synthesize for a cue. Lookups ignore case so
// "Kokyu Nage" and "Kokyu nage" share a spelling.
func SpeechText(language, cue string) string {
	if language != "French" {
		return cue
	}
	if spoken, ok := frenchPronunciations[cue]; ok {
		return spoken
	}
	for k, spoken := range frenchPronunciations {
		if strings.EqualFold(k, cue) {
			return spoken
		}
	}
	return cue
}
