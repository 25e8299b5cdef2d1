// Package directory resolves person names and expertise keywords to contact
// records. The directory is read-only to the router core: contacts live in
// the contacts.json collection and are managed out of band (see the
// `opsclaw contacts` command).
package directory

import (
	"fmt"
	"strings"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// Contact is a directory record for one person.
type Contact struct {
	Name      string   `json:"name"`
	Role      string   `json:"role,omitempty"`
	Expertise []string `json:"expertise,omitempty"`

	// Channel identifiers. All optional; delivery falls back to queueing
	// when none is present.
	SlackID  string `json:"slack_id,omitempty"`
	Discord  string `json:"discord,omitempty"`
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

// CallNumber returns the best number for an outbound call: phone first,
// WhatsApp as fallback. Empty when the contact has neither.
func (c *Contact) CallNumber() string {
	if c.Phone != "" {
		return c.Phone
	}
	return c.WhatsApp
}

// Directory looks contacts up from the backing store.
type Directory struct {
	st *store.Store
}

// New returns a Directory backed by the given store.
func New(st *store.Store) *Directory {
	return &Directory{st: st}
}

// Contacts returns all directory records in file order.
func (d *Directory) Contacts() ([]Contact, error) {
	var contacts []Contact
	if err := d.st.Load("contacts", &contacts); err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return contacts, nil
}

// FindContact resolves a person name case-insensitively. An exact name match
// wins over a substring match; among substring matches the first in file
// order wins. Returns false when no contact matches.
func (d *Directory) FindContact(name string) (*Contact, bool) {
	contacts, err := d.Contacts()
	if err != nil || name == "" {
		return nil, false
	}

	needle := strings.ToLower(name)
	var partial *Contact
	for i := range contacts {
		have := strings.ToLower(contacts[i].Name)
		if have == needle {
			return &contacts[i], true
		}
		if partial == nil && strings.Contains(have, needle) {
			partial = &contacts[i]
		}
	}
	if partial != nil {
		return partial, true
	}
	return nil, false
}

// FindExpert resolves an expertise keyword by substring match against role,
// the expertise list, and finally the name. First match in directory order
// wins; ties are not disambiguated further.
func (d *Directory) FindExpert(keyword string) (*Contact, bool) {
	contacts, err := d.Contacts()
	if err != nil || keyword == "" {
		return nil, false
	}

	needle := strings.ToLower(keyword)
	for i := range contacts {
		c := &contacts[i]
		if strings.Contains(strings.ToLower(c.Role), needle) {
			return c, true
		}
		for _, exp := range c.Expertise {
			if strings.Contains(strings.ToLower(exp), needle) {
				return c, true
			}
		}
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c, true
		}
	}
	return nil, false
}

// Save replaces the full contact list. Used by the contacts CLI only.
func (d *Directory) Save(contacts []Contact) error {
	if err := d.st.Save("contacts", contacts); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}
