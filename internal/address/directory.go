// Package address lists the shopper's saved addresses and suggests a default.
// Which address is selected for a checkout is decided by the checkout flow.
package address

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/session"
)

var ErrInvalidAddress = errors.New("invalid address")

type Backend interface {
	GetProfile(ctx context.Context, s session.Session) (*backend.Profile, error)
	AddAddress(ctx context.Context, s session.Session, a domain.Address) error
	UpdateAddress(ctx context.Context, s session.Session, id string, a domain.Address) error
	DeleteAddress(ctx context.Context, s session.Session, id string) ([]domain.Address, error)
}

type Directory struct {
	backend Backend
	sess    session.Session
	log     *slog.Logger
}

func NewDirectory(b Backend, s session.Session, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{backend: b, sess: s, log: log}
}

// Load never fails: without a token, or when the backend cannot be reached,
// it returns an empty list. defaultID is "" when no address is flagged.
func (d *Directory) Load(ctx context.Context) (addresses []domain.Address, defaultID string) {
	list, err := d.fetch(ctx)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			d.log.DebugContext(ctx, "no session, skipping address load")
		} else {
			d.log.WarnContext(ctx, "address load failed", "error", err)
		}
		return []domain.Address{}, ""
	}
	return list, domain.DefaultAddressID(list)
}

func (d *Directory) Add(ctx context.Context, a domain.Address) ([]domain.Address, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := d.backend.AddAddress(ctx, d.sess, a); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	return d.fetch(ctx)
}

func (d *Directory) Update(ctx context.Context, id string, a domain.Address) ([]domain.Address, error) {
	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := d.backend.UpdateAddress(ctx, d.sess, id, a); err != nil {
		return nil, fmt.Errorf("failed to update address %s: %w", id, err)
	}
	return d.fetch(ctx)
}

// Delete adopts the list the backend returns after the removal.
func (d *Directory) Delete(ctx context.Context, id string) ([]domain.Address, error) {
	list, err := d.backend.DeleteAddress(ctx, d.sess, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete address %s: %w", id, err)
	}
	if list == nil {
		list = []domain.Address{}
	}
	return list, nil
}

func (d *Directory) fetch(ctx context.Context) ([]domain.Address, error) {
	profile, err := d.backend.GetProfile(ctx, d.sess)
	if err != nil {
		return nil, err
	}
	if profile.Addresses == nil {
		return []domain.Address{}, nil
	}
	return profile.Addresses, nil
}

// Validate checks the fields the backend requires.
func Validate(a domain.Address) error {
	fields := []struct{ name, value string }{
		{"fullName", a.FullName},
		{"phone", a.Phone},
		{"houseNumber", a.HouseNumber},
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"pincode", a.Pincode},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(missing, ", "))
	}

	switch a.Type {
	case domain.AddressTypeHome, domain.AddressTypeWork, domain.AddressTypeOther:
	default:
		return fmt.Errorf("%w: type must be Home, Work or Other", ErrInvalidAddress)
	}
	return nil
}
