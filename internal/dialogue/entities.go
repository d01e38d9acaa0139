package dialogue

import (
	"strings"
	"unicode"

	"github.com/wolfman30/appointment-agent/internal/scheduling"
)

// firstEntity returns the first non-blank value of the given type. Later
// entities of the same type are ignored.
func firstEntity(entities []Entity, typ EntityType) (string, bool) {
	for _, e := range entities {
		if e.Type != typ {
			continue
		}
		if v := strings.TrimSpace(e.Value); v != "" {
			return v, true
		}
	}
	return "", false
}

// NormalizeTime drops whitespace and periods and lower-cases the rest, so
// "3 P.M.", "3p.m." and "3pm" compare equal.
func NormalizeTime(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

// MatchSlot returns the first slot whose normalized time equals the
// normalized user time.
func MatchSlot(slots []scheduling.Slot, userTime string) (scheduling.Slot, bool) {
	want := NormalizeTime(userTime)
	if want == "" {
		return scheduling.Slot{}, false
	}
	for _, slot := range slots {
		if NormalizeTime(slot.Time) == want {
			return slot, true
		}
	}
	return scheduling.Slot{}, false
}

func slotTimes(slots []scheduling.Slot) string {
	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		times = append(times, slot.Time)
	}
	return strings.Join(times, ", ")
}
