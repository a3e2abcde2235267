package security

import (
	"strings"
	"sync"
)

// AdminList is the static e-mail allow-list for catalog writes. It is
// replaced wholesale when the configuration reloads.
type AdminList struct {
	mu     sync.RWMutex
	emails map[string]struct{}
}

// NewAdminList creates an allow-list from emails
func NewAdminList(emails []string) *AdminList {
	l := &AdminList{}
	l.Set(emails)
	return l
}

// Set replaces the allowed e-mails
func (l *AdminList) Set(emails []string) {
	m := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			m[e] = struct{}{}
		}
	}

	l.mu.Lock()
	l.emails = m
	l.mu.Unlock()
}

// IsAdmin reports whether email may write. An empty list admits nobody.
func (l *AdminList) IsAdmin(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.emails[email]
	return ok
}

// Len returns the number of allowed e-mails
func (l *AdminList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.emails)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
