// Package models defines the wire-level data shapes shared by the client
// layers: the character record exchanged with the backend and the
// authenticated user identity.
package models

import "fmt"

// RatedItem is a named entry with an integer rating, used for skills, gear,
// cyberware, bioware and weapon lists. Duplicate names are permitted; order
// is the display order.
type RatedItem struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// Character is a single character record. ID is assigned by the server and
// empty for an unsaved draft. Attribute fields are nullable: nil means the
// field was left blank, which the backend accepts as-is.
type Character struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Race      string `json:"race"`
	Archetype string `json:"archetype"`

	Strength     *int     `json:"strength"`
	Body         *int     `json:"body"`
	Quickness    *int     `json:"quickness"`
	Intelligence *int     `json:"intelligence"`
	Willpower    *int     `json:"willpower"`
	Charisma     *int     `json:"charisma"`
	Reaction     *int     `json:"reaction"`
	Initiative   *int     `json:"initiative"`
	Essence      *float64 `json:"essence"`
	Magic        *int     `json:"magic"`
	Edge         *int     `json:"edge"`

	Skills        []RatedItem `json:"skills"`
	Gear          []RatedItem `json:"gear"`
	Cyberware     []RatedItem `json:"cyberware"`
	Bioware       []RatedItem `json:"bioware"`
	RangedWeapons []RatedItem `json:"ranged_weapons"`
	MeleeWeapons  []RatedItem `json:"melee_weapons"`
}

// ListNames enumerates the RatedItem lists a character carries, in display
// order.
var ListNames = []string{"skills", "gear", "cyberware", "bioware", "ranged_weapons", "melee_weapons"}

// ItemList returns a pointer to the named RatedItem list, or an error for an
// unknown list name.
func (c *Character) ItemList(name string) (*[]RatedItem, error) {
	switch name {
	case "skills":
		return &c.Skills, nil
	case "gear":
		return &c.Gear, nil
	case "cyberware":
		return &c.Cyberware, nil
	case "bioware":
		return &c.Bioware, nil
	case "ranged_weapons":
		return &c.RangedWeapons, nil
	case "melee_weapons":
		return &c.MeleeWeapons, nil
	default:
		return nil, fmt.Errorf("unknown item list %q", name)
	}
}

// Normalize replaces absent item lists with empty ones. Records coming back
// from the server may omit lists entirely; the editor relies on them being
// non-nil.
func (c *Character) Normalize() {
	for _, name := range ListNames {
		list, _ := c.ItemList(name)
		if *list == nil {
			*list = []RatedItem{}
		}
	}
}

// Clone returns a deep copy. The draft must be independent of the character
// list, and list patches must never share item slices with the old list.
func (c Character) Clone() Character {
	out := c
	out.Strength = cloneInt(c.Strength)
	out.Body = cloneInt(c.Body)
	out.Quickness = cloneInt(c.Quickness)
	out.Intelligence = cloneInt(c.Intelligence)
	out.Willpower = cloneInt(c.Willpower)
	out.Charisma = cloneInt(c.Charisma)
	out.Reaction = cloneInt(c.Reaction)
	out.Initiative = cloneInt(c.Initiative)
	out.Magic = cloneInt(c.Magic)
	out.Edge = cloneInt(c.Edge)
	if c.Essence != nil {
		v := *c.Essence
		out.Essence = &v
	}
	out.Skills = cloneItems(c.Skills)
	out.Gear = cloneItems(c.Gear)
	out.Cyberware = cloneItems(c.Cyberware)
	out.Bioware = cloneItems(c.Bioware)
	out.RangedWeapons = cloneItems(c.RangedWeapons)
	out.MeleeWeapons = cloneItems(c.MeleeWeapons)
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneItems(items []RatedItem) []RatedItem {
	if items == nil {
		return nil
	}
	return append([]RatedItem(nil), items...)
}
