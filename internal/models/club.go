package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Category is the closed set of club categories.
type Category uint8

const (
	CategoryAcademic Category = iota
	CategoryArts
	CategorySports
	CategoryVolunteer
	CategoryHobby

	categoryCount
)

var categoryKeys = [categoryCount]string{
	CategoryAcademic:  "academic",
	CategoryArts:      "arts",
	CategorySports:    "sports",
	CategoryVolunteer: "volunteer",
	CategoryHobby:     "hobby",
}

var categoryLabels = [categoryCount]string{
	CategoryAcademic:  "학술/교육",
	CategoryArts:      "예술/문화",
	CategorySports:    "체육/스포츠",
	CategoryVolunteer: "봉사/종교",
	CategoryHobby:     "취미/여가",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCategory resolves the lowercase key of a category.
func ParseCategory(raw string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for c, k := range categoryKeys {
		if k == key {
			return Category(c), true
		}
	}
	return 0, false
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool { return c < categoryCount }

// String returns the machine key, e.g. "sports".
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryKeys[c]
}

// Label returns the display label shown next to a club.
func (c Category) Label() string {
	if !c.Valid() {
		return ""
	}
	return categoryLabels[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return []byte(categoryKeys[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("unknown category %q", string(text))
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner for text columns.
func (c *Category) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into category", src)
	}
}

// Value implements driver.Valuer.
func (c Category) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return categoryKeys[c], nil
}

// Club is one entry of the club directory.
type Club struct {
	ID              int64    `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Icon            string   `json:"icon" yaml:"icon"`
	Category        Category `json:"category" yaml:"category"`
	CategoryLabel   string   `json:"category_label" yaml:"-"`
	Description     string   `json:"description" yaml:"description"`
	Activities      []string `json:"activities" yaml:"activities"`
	MemberCount     int      `json:"member_count" yaml:"members"`
	EstablishedYear int      `json:"established_year" yaml:"established"`
	IsRecruiting    bool     `json:"is_recruiting" yaml:"recruiting"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	Location        string   `json:"location" yaml:"location"`
	Contact         string   `json:"contact" yaml:"contact"`
	Requirements    []string `json:"requirements" yaml:"requirements"`
}

// ClubSummary is the compact card shown on the landing page.
type ClubSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	MemberCount int    `json:"member_count"`
}
