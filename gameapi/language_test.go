package gameapi

import (
	"testing"

	"juno/unitdata"
)

func TestLanguageRoundTripsEveryCode(t *testing.T) {
	lang := NewLanguage("zh")
	for code := range unitdata.DisplayNamesZH() {
		name := lang.NameFor(code)
		back := lang.CodeFor(name)
		// barr/tent share a display name; either code is acceptable as long
		// as the translation is stable and valid.
		if back != code && lang.NameFor(back) != name {
			t.Errorf("round trip %q -> %q -> %q", code, name, back)
		}
	}
}

func TestLanguageUnknownNamePassesThroughLowercased(t *testing.T) {
	lang := NewLanguage("zh")
	if got := lang.CodeFor("MysteryUnit"); got != "mysteryunit" {
		t.Errorf("CodeFor unknown = %q", got)
	}
}

func TestLanguageFactionKeys(t *testing.T) {
	lang := NewLanguage("zh")
	if lang.FactionKey(SideOwn) != "己方" || lang.FactionKey(SideEnemy) != "敌方" {
		t.Error("zh faction keys wrong")
	}
	en := NewLanguage("en")
	if en.FactionKey(SideNeutral) != "neutral" {
		t.Error("en faction keys wrong")
	}
}

func TestSideOf(t *testing.T) {
	lang := NewLanguage("zh")
	tests := []struct {
		faction string
		side    Side
	}{
		{"己方", SideOwn},
		{"敌方", SideEnemy},
		{"友方", SideAlly},
		{"中立", SideNeutral},
		{"Player", SideOwn},
		{"Neutral", SideNeutral},
		{"Multi2", SideEnemy}, // unknown factions count as hostile
		{"", SideEnemy},
	}
	for _, tt := range tests {
		if got := lang.SideOf(tt.faction); got != tt.side {
			t.Errorf("SideOf(%q) = %s, want %s", tt.faction, got, tt.side)
		}
	}
}
