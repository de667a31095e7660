package gameapi

import (
	"strings"

	"juno/unitdata"
)

// Side is the canonical faction relation used throughout the core.
type Side string

const (
	SideOwn     Side = "own"
	SideEnemy   Side = "enemy"
	SideAlly    Side = "ally"
	SideNeutral Side = "neutral"
)

// Language owns every localized string the server speaks: the faction filter
// keys and the entity-name translation tables. Callers receive it by
// injection; nothing else in the core hard-codes a localized string.
type Language struct {
	code        string
	factionKeys map[Side]string
	nameToCode  map[string]string
	codeToName  map[string]string
}

// NewLanguage builds the value object for a language code. "zh" is the
// localization the current game build speaks; anything else passes names
// through untranslated.
func NewLanguage(code string) Language {
	l := Language{
		code:       code,
		nameToCode: map[string]string{},
		codeToName: map[string]string{},
	}
	switch code {
	case "zh":
		l.factionKeys = map[Side]string{
			SideOwn:     "己方",
			SideEnemy:   "敌方",
			SideAlly:    "友方",
			SideNeutral: "中立",
		}
		for c, name := range unitdata.DisplayNamesZH() {
			l.codeToName[c] = name
			// Two codes can share a display name (barr/tent); first win is
			// fine, both decode to valid combat entries.
			if _, ok := l.nameToCode[name]; !ok {
				l.nameToCode[name] = c
			}
		}
	default:
		l.factionKeys = map[Side]string{
			SideOwn:     "own",
			SideEnemy:   "enemy",
			SideAlly:    "ally",
			SideNeutral: "neutral",
		}
	}
	return l
}

// Code returns the language code sent in every request.
func (l Language) Code() string { return l.code }

// FactionKey returns the server's localized faction filter string.
func (l Language) FactionKey(s Side) string { return l.factionKeys[s] }

// CodeFor translates a localized entity name to its type code. Names the
// table does not know pass through lowercased.
func (l Language) CodeFor(name string) string {
	if c, ok := l.nameToCode[name]; ok {
		return c
	}
	return strings.ToLower(name)
}

// NameFor translates a type code to the localized display name, falling back
// to the code itself.
func (l Language) NameFor(code string) string {
	if n, ok := l.codeToName[strings.ToLower(code)]; ok {
		return n
	}
	return code
}

// SideOf classifies a faction string as reported by the server. Exact key
// matches win; otherwise common aliases apply; unknown factions count as
// enemy, which errs toward caution in strength roll-ups.
func (l Language) SideOf(faction string) Side {
	if faction == "" {
		return SideEnemy
	}
	for side, key := range l.factionKeys {
		if faction == key {
			return side
		}
	}
	switch strings.ToLower(faction) {
	case "player", "self", "my", "己方":
		return SideOwn
	case "ally", "friendly", "friend", "友方":
		return SideAlly
	case "enemy", "hostile", "敌方":
		return SideEnemy
	case "neutral", "中立":
		return SideNeutral
	}
	return SideEnemy
}
