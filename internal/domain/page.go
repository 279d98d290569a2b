package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PageID identifies a dashboard page. The set is closed; the zero value is not a page.
type PageID uint8

const (
	PageHome PageID = iota + 1
	PageProjects
	PageFinancials
	PageSupplyChain
	PageWhatIf
	PageAdmin
)

var pageSlugs = [...]string{
	PageHome:        "home",
	PageProjects:    "projects",
	PageFinancials:  "financials",
	PageSupplyChain: "supply-chain",
	PageWhatIf:      "what-if",
	PageAdmin:       "admin",
}

var pageTitles = [...]string{
	PageHome:        "Dashboard",
	PageProjects:    "Projects",
	PageFinancials:  "Financials",
	PageSupplyChain: "Supply Chain",
	PageWhatIf:      "What-If Analysis",
	PageAdmin:       "Admin",
}

// AllPages returns every page in navigation order
func AllPages() []PageID {
	return []PageID{PageHome, PageProjects, PageFinancials, PageSupplyChain, PageWhatIf, PageAdmin}
}

// Valid reports whether p is one of the known pages
func (p PageID) Valid() bool {
	return p >= PageHome && p <= PageAdmin
}

// String returns the wire identifier, e.g. "supply-chain"
func (p PageID) String() string {
	if !p.Valid() {
		return fmt.Sprintf("page(%d)", uint8(p))
	}
	return pageSlugs[p]
}

// Title returns the navigation label
func (p PageID) Title() string {
	if !p.Valid() {
		return ""
	}
	return pageTitles[p]
}

// ParsePageID maps a wire identifier to a PageID
func ParsePageID(s string) (PageID, error) {
	s = strings.TrimSpace(s)
	for _, p := range AllPages() {
		if pageSlugs[p] == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown page %q", s)
}

// MarshalJSON encodes the page as its wire identifier
func (p PageID) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid page %d", uint8(p))
	}
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a wire identifier
func (p *PageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePageID(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PageSet is a permission set over PageID, one bit per page.
type PageSet uint8

// NewPageSet builds a set from the given pages, ignoring invalid ones
func NewPageSet(pages ...PageID) PageSet {
	var s PageSet
	for _, p := range pages {
		s = s.Add(p)
	}
	return s
}

// ParsePageSet converts wire permission strings. Unknown entries are returned
// separately and left out of the set.
func ParsePageSet(values []string) (PageSet, []string) {
	var s PageSet
	var unknown []string
	for _, v := range values {
		p, err := ParsePageID(v)
		if err != nil {
			unknown = append(unknown, v)
			continue
		}
		s = s.Add(p)
	}
	return s, unknown
}

func bit(p PageID) PageSet {
	return 1 << (p - 1)
}

// Has reports membership
func (s PageSet) Has(p PageID) bool {
	return p.Valid() && s&bit(p) != 0
}

// Add returns the set with p included
func (s PageSet) Add(p PageID) PageSet {
	if !p.Valid() {
		return s
	}
	return s | bit(p)
}

// Pages lists members in navigation order
func (s PageSet) Pages() []PageID {
	out := make([]PageID, 0, len(pageSlugs))
	for _, p := range AllPages() {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Strings returns the wire identifiers in navigation order
func (s PageSet) Strings() []string {
	pages := s.Pages()
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.String()
	}
	return out
}

// MarshalJSON encodes the set as an array of page identifiers
func (s PageSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of page identifiers. Identifiers outside the
// page enumeration are dropped so a set never holds an unknown page.
func (s *PageSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s, _ = ParsePageSet(values)
	return nil
}
