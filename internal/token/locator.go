package token

import "net/http"

const (
	// QueryParam is the URL query parameter a share link carries the token in
	QueryParam = "token"
	// CookieName is the cookie the token is persisted under after verification
	CookieName = "token"
)

// Source names the location a candidate token was found in
type Source string

const (
	SourceURL     Source = "url"
	SourceCookie  Source = "cookie"
	SourceSession Source = "session"
)

// Candidate is an unverified token together with where it was found
type Candidate struct {
	Token  string
	Source Source
}

// Lookup is one named location to check for a candidate token
type Lookup struct {
	Source Source
	Find   func(r *http.Request) string
}

// Locator finds a candidate token by checking an ordered list of locations.
// First match wins; lower-precedence locations are not consulted once a
// candidate is found. Locating never verifies.
type Locator struct {
	lookups []Lookup
}

// NewLocator builds the default locator: URL query parameter, then cookie,
// then the session cache (if a cache lookup is supplied).
func NewLocator(sessionLookup func(r *http.Request) string) *Locator {
	lookups := []Lookup{
		{Source: SourceURL, Find: fromQuery},
		{Source: SourceCookie, Find: fromCookie},
	}
	if sessionLookup != nil {
		lookups = append(lookups, Lookup{Source: SourceSession, Find: sessionLookup})
	}
	return &Locator{lookups: lookups}
}

// NewLocatorWithLookups builds a locator with an explicit precedence order
func NewLocatorWithLookups(lookups ...Lookup) *Locator {
	return &Locator{lookups: lookups}
}

// Locate returns the first candidate found, or nil if no location holds one
func (l *Locator) Locate(r *http.Request) *Candidate {
	for _, lookup := range l.lookups {
		if value := lookup.Find(r); value != "" {
			return &Candidate{Token: value, Source: lookup.Source}
		}
	}
	return nil
}

func fromQuery(r *http.Request) string {
	return r.URL.Query().Get(QueryParam)
}

func fromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
