package model

import "strings"

// TyreCompound enumerates the tyre compounds reported by the stint feed.
type TyreCompound int

const (
	CompoundUnknown TyreCompound = iota
	CompoundSoft
	CompoundMedium
	CompoundHard
	CompoundIntermediate
	CompoundWet
)

func ParseCompound(arg string) TyreCompound {
	switch strings.ToUpper(strings.TrimSpace(arg)) {
	case "SOFT":
		return CompoundSoft
	case "MEDIUM":
		return CompoundMedium
	case "HARD":
		return CompoundHard
	case "INTERMEDIATE":
		return CompoundIntermediate
	case "WET":
		return CompoundWet
	default:
		return CompoundUnknown
	}
}

func (c TyreCompound) String() string {
	switch c {
	case CompoundSoft:
		return "SOFT"
	case CompoundMedium:
		return "MEDIUM"
	case CompoundHard:
		return "HARD"
	case CompoundIntermediate:
		return "INTERMEDIATE"
	case CompoundWet:
		return "WET"
	default:
		return "UNKNOWN"
	}
}

// Label returns the icon+name representation used in rendered messages.
func (c TyreCompound) Label() string {
	switch c {
	case CompoundSoft:
		return "🔴 Soft"
	case CompoundMedium:
		return "🟡 Medium"
	case CompoundHard:
		return "⚪ Hard"
	case CompoundIntermediate:
		return "🔵 Intermediate"
	case CompoundWet:
		return "🟢 Wet"
	default:
		return "⚫ Unknown"
	}
}
