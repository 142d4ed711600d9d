package site

import (
	"errors"
	"slices"
	"strings"

	"campbook/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidBaseRate   = errors.New("base rate cannot be negative")
	ErrInvalidOccupancy  = errors.New("max occupancy must be positive")
	ErrMissingCampground = errors.New("campground id is required")
	ErrMissingClass      = errors.New("site class id is required")
	ErrClassMismatch     = errors.New("site class belongs to another campground")
)

// Class groups interchangeable sites sharing a base rate, occupancy limit
// and amenities.
type Class struct {
	id           uuid.UUID
	campgroundID uuid.UUID
	name         string
	baseRate     money.Cents
	maxOccupancy int
	amenities    []string
}

func NewClass(id, campgroundID uuid.UUID, name string, baseRate money.Cents, maxOccupancy int, amenities []string) (*Class, error) {
	name = strings.TrimSpace(name)
	switch {
	case campgroundID == uuid.Nil:
		return nil, ErrMissingCampground
	case name == "":
		return nil, ErrEmptyName
	case baseRate < 0:
		return nil, ErrInvalidBaseRate
	case maxOccupancy <= 0:
		return nil, ErrInvalidOccupancy
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	tags := slices.Clone(amenities)
	slices.Sort(tags)
	return &Class{
		id:           id,
		campgroundID: campgroundID,
		name:         name,
		baseRate:     baseRate,
		maxOccupancy: maxOccupancy,
		amenities:    slices.Compact(tags),
	}, nil
}

func (c *Class) Admits(guests int) bool {
	return guests >= 1 && guests <= c.maxOccupancy
}

func (c *Class) HasAmenity(tag string) bool {
	_, ok := slices.BinarySearch(c.amenities, tag)
	return ok
}

func (c *Class) ID() uuid.UUID           { return c.id }
func (c *Class) CampgroundID() uuid.UUID { return c.campgroundID }
func (c *Class) Name() string            { return c.name }
func (c *Class) BaseRate() money.Cents   { return c.baseRate }
func (c *Class) MaxOccupancy() int       { return c.maxOccupancy }
func (c *Class) Amenities() []string     { return slices.Clone(c.amenities) }

// Site is a single bookable pitch. Sites are soft-deactivated, never removed.
type Site struct {
	id           uuid.UUID
	campgroundID uuid.UUID
	classID      uuid.UUID
	name         string
	active       bool
}

func NewSite(id uuid.UUID, class *Class, name string, active bool) (*Site, error) {
	if class == nil {
		return nil, ErrMissingClass
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Site{
		id:           id,
		campgroundID: class.CampgroundID(),
		classID:      class.ID(),
		name:         name,
		active:       active,
	}, nil
}

// ReconstructSite rebuilds a site from storage without re-validation.
func ReconstructSite(id, campgroundID, classID uuid.UUID, name string, active bool) *Site {
	return &Site{
		id:           id,
		campgroundID: campgroundID,
		classID:      classID,
		name:         name,
		active:       active,
	}
}

// BelongsTo reports whether the site is a member of class.
func (s *Site) BelongsTo(class *Class) error {
	if class == nil || s.classID != class.ID() {
		return ErrMissingClass
	}
	if s.campgroundID != class.CampgroundID() {
		return ErrClassMismatch
	}
	return nil
}

func (s *Site) ID() uuid.UUID           { return s.id }
func (s *Site) CampgroundID() uuid.UUID { return s.campgroundID }
func (s *Site) ClassID() uuid.UUID      { return s.classID }
func (s *Site) Name() string            { return s.name }
func (s *Site) IsActive() bool          { return s.active }
