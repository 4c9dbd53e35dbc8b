package service

import (
	"context"
	"strings"
	"time"

	"lucosms-backend/internal/model"
	"lucosms-backend/internal/phone"

	"go.uber.org/zap"
)

// ContactStore keeps the contact list. Phone numbers are unique in it.
type ContactStore interface {
	ListContacts(ctx context.Context) ([]model.Contact, error)
	// AddContact reports false when the number is already stored.
	AddContact(ctx context.Context, c model.Contact) (bool, error)
	// MergeContacts stores every contact whose number is new and returns those.
	// Either all of them are stored or none are.
	MergeContacts(ctx context.Context, contacts []model.Contact) ([]model.Contact, error)
	DeleteContact(ctx context.Context, phoneNumber string) (bool, error)
}

type ContactService struct {
	Store  ContactStore
	logger *zap.Logger
	now    func() time.Time
}

func NewContactService(store ContactStore, logger *zap.Logger) *ContactService {
	return &ContactService{Store: store, logger: logger, now: time.Now}
}

// AddManual validates one number and stores it. A rejected number comes back as a
// *phone.ValidationError and a known one as ErrAlreadyAdded.
func (s *ContactService) AddManual(ctx context.Context, rawNumber, name string) (*model.Contact, error) {
	number, err := phone.Normalize(rawNumber)
	if err != nil {
		return nil, err
	}

	c := model.NewContact(strings.TrimSpace(name), number, s.now())
	added, err := s.Store.AddContact(ctx, c)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrAlreadyAdded
	}

	s.logger.Info("Contact added", zap.String("phone_number", number))
	return &c, nil
}

// List returns the contacts whose name or number contains search, ignoring case.
func (s *ContactService) List(ctx context.Context, search string) ([]model.Contact, error) {
	contacts, err := s.Store.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return contacts, nil
	}

	out := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), search) || strings.Contains(c.PhoneNumber, search) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Remove deletes a contact. Any accepted number shape identifies it.
func (s *ContactService) Remove(ctx context.Context, rawNumber string) error {
	number, err := phone.Normalize(rawNumber)
	if err != nil {
		return err
	}

	removed, err := s.Store.DeleteContact(ctx, number)
	if err != nil {
		return err
	}
	if !removed {
		return ErrContactNotFound
	}

	s.logger.Info("Contact removed", zap.String("phone_number", number))
	return nil
}

// Snapshot loads the current contacts into a set for reconciliation.
func (s *ContactService) Snapshot(ctx context.Context) (*model.ContactSet, error) {
	contacts, err := s.Store.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewContactSet(contacts...), nil
}

func (s *ContactService) Merge(ctx context.Context, contacts []model.Contact) ([]model.Contact, error) {
	if len(contacts) == 0 {
		return []model.Contact{}, nil
	}
	return s.Store.MergeContacts(ctx, contacts)
}
