package snapshot

import (
	"sort"
	"strings"

	"sitewatch/internal/model"
)

type SortKey string

const (
	SortName   SortKey = "name"
	SortDown   SortKey = "down"
	SortSSL    SortKey = "ssl"
	SortDomain SortKey = "domain"
)

// ParseSortKey maps a query value to a key; empty means SortName.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortName, true
	case SortName, SortDown, SortSSL, SortDomain:
		return k, true
	}
	return "", false
}

// sortRows orders rows stably so equal keys keep registry order. Every key
// falls back to the name order.
func sortRows(rows []Row, key SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch key {
		case SortDown:
			if a.IsDown != b.IsDown {
				return a.IsDown
			}
		case SortSSL:
			if c := compareExpiry(a.SSLExpiry, b.SSLExpiry); c != 0 {
				return c < 0
			}
		case SortDomain:
			if c := compareExpiry(a.DomainExpiry, b.DomainExpiry); c != 0 {
				return c < 0
			}
		}
		return nameLess(a.sortName, b.sortName)
	})
}

// nameLess compares case-insensitively with blank names last.
func nameLess(a, b string) bool {
	if a == "" || b == "" {
		return a != "" && b == ""
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// compareExpiry puts unreadable dates first, then valid dates soonest first,
// then absent dates.
func compareExpiry(a, b model.Date) int {
	ra, rb := expiryRank(a), expiryRank(b)
	if ra != rb {
		return ra - rb
	}
	if ra == 1 {
		return a.Time().Compare(b.Time())
	}
	return 0
}

func expiryRank(d model.Date) int {
	switch {
	case d.Invalid():
		return 0
	case d.Valid():
		return 1
	}
	return 2
}
