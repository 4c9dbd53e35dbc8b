package model

import "time"

const (
	ManualContactName   = "Unknown"
	ImportedContactName = "Contact"
	DefaultRole         = "N/A"
)

type Contact struct {
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number"`
	LastActive  time.Time `json:"last_active"`
}

// NewContact builds a contact for a canonical number with placeholder metadata.
func NewContact(name, phoneNumber string, now time.Time) Contact {
	if name == "" {
		name = ManualContactName
	}
	return Contact{
		Name:        name,
		Role:        DefaultRole,
		PhoneNumber: phoneNumber,
		LastActive:  now,
	}
}

// ContactSet is an ordered collection of contacts keyed by phone number.
// The zero value is ready to use. It is not safe for concurrent use.
type ContactSet struct {
	contacts []Contact
	index    map[string]int
}

func NewContactSet(contacts ...Contact) *ContactSet {
	s := &ContactSet{}
	for _, c := range contacts {
		s.Add(c)
	}
	return s
}

// Add appends c unless a contact with the same phone number is already present.
func (s *ContactSet) Add(c Contact) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[c.PhoneNumber]; ok {
		return false
	}
	s.index[c.PhoneNumber] = len(s.contacts)
	s.contacts = append(s.contacts, c)
	return true
}

func (s *ContactSet) Has(phoneNumber string) bool {
	_, ok := s.index[phoneNumber]
	return ok
}

func (s *ContactSet) Get(phoneNumber string) (Contact, bool) {
	i, ok := s.index[phoneNumber]
	if !ok {
		return Contact{}, false
	}
	return s.contacts[i], true
}

func (s *ContactSet) Remove(phoneNumber string) bool {
	i, ok := s.index[phoneNumber]
	if !ok {
		return false
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	delete(s.index, phoneNumber)
	for j := i; j < len(s.contacts); j++ {
		s.index[s.contacts[j].PhoneNumber] = j
	}
	return true
}

// Merge adds every contact that is not yet present and returns the ones that were added.
func (s *ContactSet) Merge(contacts []Contact) []Contact {
	added := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if s.Add(c) {
			added = append(added, c)
		}
	}
	return added
}

func (s *ContactSet) Len() int {
	return len(s.contacts)
}

// Contacts returns a copy of the contacts in insertion order.
func (s *ContactSet) Contacts() []Contact {
	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

func (s *ContactSet) Clone() *ContactSet {
	return NewContactSet(s.contacts...)
}
