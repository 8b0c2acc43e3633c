package snapshot

import (
	"strings"
	"time"

	"sitewatch/internal/model"
	"sitewatch/internal/utils"
)

// Row is one dashboard entry: a registry site joined with its latest status.
type Row struct {
	Name          string       `json:"name"`
	URL           string       `json:"url"`
	LogoURL       string       `json:"logo_url,omitempty"`
	Status        model.Status `json:"status,omitempty"`
	LastChecked   *time.Time   `json:"last_checked,omitempty"`
	SSLExpiry     model.Date   `json:"ssl_expiry"`
	DomainExpiry  model.Date   `json:"domain_expiry"`
	SSLDisplay    string       `json:"ssl_expiry_display"`
	DomainDisplay string       `json:"domain_expiry_display"`
	SSLExpired    bool         `json:"ssl_expired"`
	DomainExpired bool         `json:"domain_expired"`
	IsDown        bool         `json:"is_down"`
	HasHistory    bool         `json:"has_history"`

	// sortName is the joined name before the hostname fallback; blank names
	// sort last.
	sortName string
}

// Counters summarise a snapshot. Down counts rows whose last check failed or
// that were never checked; expired certificates and registrations are
// counted on their own.
type Counters struct {
	Total         int `json:"total"`
	Down          int `json:"down"`
	ExpiredSSL    int `json:"expired_ssl"`
	ExpiredDomain int `json:"expired_domain"`
}

type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	Sort        SortKey   `json:"sort"`
	Placeholder bool      `json:"placeholder"`
	Counters    Counters  `json:"counters"`
	Rows        []Row     `json:"rows"`
}

var placeholderSite = model.SiteRecord{
	Name:    "Example",
	URL:     "https://example.com",
	LogoURL: "https://example.com/favicon.ico",
}

// Build joins the registry with the latest status per URL and evaluates
// every row against now. The stored status is only one input: expiry dates
// are re-checked so a row that was OK when written can be down today.
//
// With an empty registry the rows come from history alone. With both empty
// the snapshot holds a single placeholder row.
func Build(sites []model.SiteRecord, latest []model.StatusRecord, now time.Time, key SortKey) Snapshot {
	snap := Snapshot{GeneratedAt: now.UTC(), Sort: key}

	byURL := make(map[string]model.StatusRecord, len(latest))
	for _, rec := range latest {
		byURL[rec.URL] = rec
	}

	switch {
	case len(sites) > 0:
		for _, site := range sites {
			rec, ok := byURL[site.URL]
			snap.Rows = append(snap.Rows, newRow(site, rec, ok, now))
		}
	case len(latest) > 0:
		for _, rec := range latest {
			site := model.SiteRecord{Name: rec.Name, URL: rec.URL}
			snap.Rows = append(snap.Rows, newRow(site, rec, true, now))
		}
	default:
		snap.Placeholder = true
		rec := model.StatusRecord{URL: placeholderSite.URL, Status: model.StatusOK}
		snap.Rows = append(snap.Rows, newRow(placeholderSite, rec, true, now))
		snap.Rows[0].HasHistory = false
	}

	sortRows(snap.Rows, key)
	snap.Counters = count(snap.Rows, now)
	return snap
}

func newRow(site model.SiteRecord, rec model.StatusRecord, found bool, now time.Time) Row {
	name := strings.TrimSpace(site.Name)
	if name == "" && found {
		name = strings.TrimSpace(rec.Name)
	}

	row := Row{
		Name:       DisplayName(name, site.URL),
		URL:        site.URL,
		LogoURL:    site.LogoURL,
		HasHistory: found,
		sortName:   name,
	}
	if found {
		row.Status = rec.Status
		row.SSLExpiry = rec.SSLExpiry
		row.DomainExpiry = rec.DomainExpiry
		if !rec.Timestamp.IsZero() {
			ts := rec.Timestamp
			row.LastChecked = &ts
		}
	}

	row.SSLDisplay = row.SSLExpiry.Display()
	row.DomainDisplay = row.DomainExpiry.Display()
	row.SSLExpired = row.SSLExpiry.ExpiredAt(now)
	row.DomainExpired = row.DomainExpiry.ExpiredAt(now)
	row.IsDown = !found || row.Status != model.StatusOK || row.SSLExpired || row.DomainExpired
	return row
}

// DisplayName returns name, or the URL's host without "www.", or "N/A" when
// the URL cannot be parsed.
func DisplayName(name, rawURL string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if u, ok := utils.ParseSiteURL(rawURL); ok {
		return utils.DisplayHost(u)
	}
	return "N/A"
}

func count(rows []Row, now time.Time) Counters {
	c := Counters{Total: len(rows)}
	for _, r := range rows {
		if r.Status != model.StatusOK {
			c.Down++
		}
		if r.SSLExpiry.ExpiredAt(now) {
			c.ExpiredSSL++
		}
		if r.DomainExpiry.ExpiredAt(now) {
			c.ExpiredDomain++
		}
	}
	return c
}
