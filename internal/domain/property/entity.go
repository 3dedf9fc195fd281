package property

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrMissingHost     = errors.New("property must have a host")
)

// Property is the listing a booking is made against. Listing CRUD lives in a
// separate service; the booking engine only needs the host reference and
// capacity, so this aggregate stays intentionally small.
type Property struct {
	id               uuid.UUID
	hostID           uuid.UUID
	name             string
	capacity         int
	nightlyRateCents int64
}

func NewProperty(id, hostID uuid.UUID, name string, capacity int, nightlyRateCents int64) (*Property, error) {
	if hostID == uuid.Nil {
		return nil, ErrMissingHost
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Property{
		id:               id,
		hostID:           hostID,
		name:             name,
		capacity:         capacity,
		nightlyRateCents: nightlyRateCents,
	}, nil
}

func (p *Property) ID() uuid.UUID           { return p.id }
func (p *Property) HostID() uuid.UUID       { return p.hostID }
func (p *Property) Name() string            { return p.name }
func (p *Property) Capacity() int           { return p.capacity }
func (p *Property) NightlyRateCents() int64 { return p.nightlyRateCents }
