package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/barber-billing/internal/pricing"
)

// Service is a bookable service on the shop menu.
type Service struct {
	ID       string        `json:"id" csv:"id"`
	Name     string        `json:"name" csv:"name"`
	Price    pricing.Money `json:"price" csv:"price"`
	Category string        `json:"category" csv:"category"`
}

// Barber is a member of staff who performs services.
type Barber struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Experience  int      `json:"experience"`
	Specialties []string `json:"specialties"`
}

// Customer is a known customer used for seeding demo data.
type Customer struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone"`
	HasMembership        bool       `json:"hasMembership"`
	MembershipStartDate  *time.Time `json:"membershipStartDate,omitempty"`
	MembershipExpiryDate *time.Time `json:"membershipExpiryDate,omitempty"`
}

// Catalog holds the immutable reference data of the shop.
type Catalog struct {
	services  []Service
	barbers   []Barber
	customers []Customer

	serviceIdx map[string]int
	barberIdx  map[string]int
}

// New validates and indexes the reference lists.
func New(services []Service, barbers []Barber, customers []Customer) (*Catalog, error) {
	c := &Catalog{
		services:   make([]Service, len(services)),
		barbers:    make([]Barber, 0, len(barbers)),
		customers:  make([]Customer, len(customers)),
		serviceIdx: make(map[string]int, len(services)),
		barberIdx:  make(map[string]int, len(barbers)),
	}
	copy(c.services, services)
	copy(c.customers, customers)

	for i, svc := range c.services {
		if strings.TrimSpace(svc.ID) == "" {
			return nil, errors.New("catalog: service id is required")
		}
		if svc.Price < 0 {
			return nil, fmt.Errorf("catalog: service %s has negative price", svc.ID)
		}
		if _, dup := c.serviceIdx[svc.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate service id %s", svc.ID)
		}
		c.serviceIdx[svc.ID] = i
	}
	for _, b := range barbers {
		if strings.TrimSpace(b.ID) == "" {
			return nil, errors.New("catalog: barber id is required")
		}
		if b.Experience < 0 {
			return nil, fmt.Errorf("catalog: barber %s has negative experience", b.ID)
		}
		if _, dup := c.barberIdx[b.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate barber id %s", b.ID)
		}
		b.Specialties = append([]string(nil), b.Specialties...)
		c.barberIdx[b.ID] = len(c.barbers)
		c.barbers = append(c.barbers, b)
	}
	return c, nil
}

// MustNew is New that panics on invalid reference data.
func MustNew(services []Service, barbers []Barber, customers []Customer) *Catalog {
	c, err := New(services, barbers, customers)
	if err != nil {
		panic(err)
	}
	return c
}

// Services returns the service menu in catalog order.
func (c *Catalog) Services() []Service {
	if c == nil {
		return nil
	}
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Barbers returns the barbers in catalog order.
func (c *Catalog) Barbers() []Barber {
	if c == nil {
		return nil
	}
	out := make([]Barber, len(c.barbers))
	for i, b := range c.barbers {
		b.Specialties = append([]string(nil), b.Specialties...)
		out[i] = b
	}
	return out
}

// Customers returns the known customers.
func (c *Catalog) Customers() []Customer {
	if c == nil {
		return nil
	}
	out := make([]Customer, len(c.customers))
	copy(out, c.customers)
	return out
}

// Service looks up a service by id.
func (c *Catalog) Service(id string) (Service, bool) {
	if c == nil {
		return Service{}, false
	}
	i, ok := c.serviceIdx[id]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

// Barber looks up a barber by id.
func (c *Catalog) Barber(id string) (Barber, bool) {
	if c == nil {
		return Barber{}, false
	}
	i, ok := c.barberIdx[id]
	if !ok {
		return Barber{}, false
	}
	b := c.barbers[i]
	b.Specialties = append([]string(nil), b.Specialties...)
	return b, true
}

// Resolve maps ids to services, skipping unknown ids.
func (c *Catalog) Resolve(ids []string) []Service {
	out := make([]Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := c.Service(id); ok {
			out = append(out, svc)
		}
	}
	return out
}

// Prices extracts the price of each service.
func Prices(services []Service) []pricing.Money {
	out := make([]pricing.Money, len(services))
	for i, svc := range services {
		out[i] = svc.Price
	}
	return out
}

// Names extracts the name of each service.
func Names(services []Service) []string {
	out := make([]string, len(services))
	for i, svc := range services {
		out[i] = svc.Name
	}
	return out
}
