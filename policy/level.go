package policy

import "strings"

// Level expresses how much autonomy an integration has earned.  Levels are
// ordered: an action that requires "trusted" is gated for every run whose
// maturity is below LevelTrusted.
type Level int

const (
	LevelExperimental Level = iota // every side effect needs a decision
	LevelSupervised                // writes need a decision, reads run free
	LevelTrusted                   // only destructive actions need a decision
	LevelAutonomous                // nothing is gated
)

var levelNames = map[Level]string{
	LevelExperimental: "experimental",
	LevelSupervised:   "supervised",
	LevelTrusted:      "trusted",
	LevelAutonomous:   "autonomous",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "experimental"
}

// ParseLevel maps a level name to its Level.  Unknown or empty names resolve
// to LevelExperimental so that a typo never widens autonomy.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "supervised":
		return LevelSupervised
	case "trusted":
		return LevelTrusted
	case "autonomous":
		return LevelAutonomous
	}
	return LevelExperimental
}
