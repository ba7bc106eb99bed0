// Package directory holds the read-only merchant reference data and the
// exact-match lookup service the wizard authenticates against. Records are
// parsed once from an embedded fixture and never mutated afterwards.
package directory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when no merchant matches the submitted identifier
// or email. It is a recoverable validation error, never fatal.
var ErrNotFound = errors.New("merchant not found")

// IdentifierKind tags which kind of audit identifier a product expects.
type IdentifierKind string

const (
	KindPayment     IdentifierKind = "payment_id"
	KindToken       IdentifierKind = "token_id"
	KindOrder       IdentifierKind = "order_id"
	KindTransaction IdentifierKind = "transaction_id"
)

// AccountManager is the contact responsible for a merchant account.
type AccountManager struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// Product describes one auditable product in a merchant's catalog.
type Product struct {
	ID               string         `yaml:"id"`
	Name             string         `yaml:"name"`
	Description      string         `yaml:"description"`
	RequiredFeatures []string       `yaml:"required_features"`
	IdentifierKind   IdentifierKind `yaml:"identifier_kind"`
	IdentifierLabel  string         `yaml:"identifier_label"`
}

// ChildAccount is a sub-account under a parent merchant. It shares the
// merchant shape minus nested children, plus a merchant category code.
type ChildAccount struct {
	ID                string         `yaml:"id"`
	BusinessName      string         `yaml:"business_name"`
	OwnerEmail        string         `yaml:"owner_email"`
	MCC               string         `yaml:"mcc"`
	AccountManager    AccountManager `yaml:"account_manager"`
	AvailableFeatures []string       `yaml:"available_features"`
	Products          []Product      `yaml:"products"`
}

// Merchant is one record in the directory.
type Merchant struct {
	ID                string         `yaml:"id"`
	CompanyName       string         `yaml:"company_name"`
	Email             string         `yaml:"email"`
	AccountManager    AccountManager `yaml:"account_manager"`
	AvailableFeatures []string       `yaml:"available_features"`
	Products          []Product      `yaml:"products"`
	Children          []ChildAccount `yaml:"children"`
}

// HasChildren reports whether the merchant requires a sub-account selection
// before any product work can begin.
func (m Merchant) HasChildren() bool { return len(m.Children) > 0 }

// FeatureEnabled reports whether the named feature is enabled on the account.
// Exact string match, no normalization.
func (m Merchant) FeatureEnabled(name string) bool {
	for _, f := range m.AvailableFeatures {
		if f == name {
			return true
		}
	}
	return false
}

// Product returns the catalog entry with the given ID.
func (m Merchant) Product(id string) (Product, bool) {
	for _, p := range m.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Child returns the sub-account with the given ID.
func (m Merchant) Child(id string) (ChildAccount, bool) {
	for _, c := range m.Children {
		if c.ID == id {
			return c, true
		}
	}
	return ChildAccount{}, false
}

// FromChild promotes a sub-account into the active-merchant shape consumed
// by the rest of the flow. The child's business name and owner email replace
// the parent-level company and email fields; the substitution is exact.
func FromChild(c ChildAccount) Merchant {
	return Merchant{
		ID:                c.ID,
		CompanyName:       c.BusinessName,
		Email:             c.OwnerEmail,
		AccountManager:    c.AccountManager,
		AvailableFeatures: c.AvailableFeatures,
		Products:          c.Products,
	}
}

// Service provides exact-match lookups over an immutable merchant set.
type Service struct {
	byID    map[string]Merchant
	byEmail map[string]Merchant
	ids     []string
	emails  []string
}

// NewService builds a lookup service over the given merchants. The slice is
// indexed, not copied; callers must not mutate it afterwards.
func NewService(merchants []Merchant) *Service {
	s := &Service{
		byID:    make(map[string]Merchant, len(merchants)),
		byEmail: make(map[string]Merchant, len(merchants)),
	}
	for _, m := range merchants {
		s.byID[m.ID] = m
		s.ids = append(s.ids, m.ID)
		if m.Email != "" {
			s.byEmail[m.Email] = m
			s.emails = append(s.emails, m.Email)
		}
	}
	sort.Strings(s.ids)
	sort.Strings(s.emails)
	return s
}

// Find returns the merchant with the given identifier. Exact string match
// only; a miss wraps ErrNotFound with a message naming the demo IDs.
func (s *Service) Find(id string) (Merchant, error) {
	m, ok := s.byID[id]
	if !ok {
		return Merchant{}, fmt.Errorf("%w: invalid MID, please try %s for demo", ErrNotFound, orList(s.ids))
	}
	return m, nil
}

// FindByEmail resolves a login email to its merchant record. The password is
// never consulted; this is demo authentication only.
func (s *Service) FindByEmail(email string) (Merchant, error) {
	m, ok := s.byEmail[email]
	if !ok {
		return Merchant{}, fmt.Errorf("%w: invalid credentials, try %s with any password", ErrNotFound, orList(s.emails))
	}
	return m, nil
}

// DemoIDs lists the identifiers accepted at the admin login, for display on
// the login screen.
func (s *Service) DemoIDs() []string { return append([]string(nil), s.ids...) }

// DemoEmails lists the emails accepted at the merchant login.
func (s *Service) DemoEmails() []string { return append([]string(nil), s.emails...) }

func orList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values[:len(values)-1], ", ") + " or " + values[len(values)-1]
	}
}
