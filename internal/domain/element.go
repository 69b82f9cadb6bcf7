package domain

// ElementType identifies one of the game's elements. It is used for skill
// costs, damage typing, infusions and attachments.
type ElementType int

const (
	ElementNone ElementType = iota
	ElementOmni
	ElementPyro
	ElementHydro
	ElementElectro
	ElementCryo
	ElementAnemo
	ElementGeo
	ElementDendro
)

var elementNames = map[ElementType]string{
	ElementNone:    "none",
	ElementOmni:    "omni",
	ElementPyro:    "pyro",
	ElementHydro:   "hydro",
	ElementElectro: "electro",
	ElementCryo:    "cryo",
	ElementAnemo:   "anemo",
	ElementGeo:     "geo",
	ElementDendro:  "dendro",
}

func (e ElementType) String() string {
	if name, ok := elementNames[e]; ok {
		return name
	}
	return "unknown"
}

// ParseElement converts a content-file element name to its ElementType.
// Returns ElementNone and false for unrecognized names.
func ParseElement(name string) (ElementType, bool) {
	for e, n := range elementNames {
		if n == name {
			return e, true
		}
	}
	return ElementNone, false
}

// ReactionType identifies an elemental reaction already determined for a
// damage message. The engine carries it through untouched; computing
// reactions from attachments is an external effect's job.
type ReactionType int

const (
	ReactionNone ReactionType = iota
	ReactionVaporize
	ReactionMelt
	ReactionOverloaded
	ReactionSuperconduct
	ReactionElectroCharged
	ReactionFrozen
	ReactionSwirl
	ReactionCrystallize
	ReactionBloom
)

func (r ReactionType) String() string {
	switch r {
	case ReactionNone:
		return "none"
	case ReactionVaporize:
		return "vaporize"
	case ReactionMelt:
		return "melt"
	case ReactionOverloaded:
		return "overloaded"
	case ReactionSuperconduct:
		return "superconduct"
	case ReactionElectroCharged:
		return "electro-charged"
	case ReactionFrozen:
		return "frozen"
	case ReactionSwirl:
		return "swirl"
	case ReactionCrystallize:
		return "crystallize"
	case ReactionBloom:
		return "bloom"
	default:
		return "unknown"
	}
}
