package snapshot

import (
	"testing"
	"time"

	"sitewatch/internal/model"
	"sitewatch/internal/utils"
)

func init() {
	utils.TestInitLogger()
}

var now = time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

func status(url string, s model.Status, ssl, domain string) model.StatusRecord {
	return model.StatusRecord{
		Timestamp:    now.Add(-time.Hour),
		URL:          url,
		Status:       s,
		SSLExpiry:    model.ParseDate(ssl),
		DomainExpiry: model.ParseDate(domain),
	}
}

func TestBuild_Counters(t *testing.T) {
	sites := []model.SiteRecord{
		{Name: "Healthy", URL: "https://ok.example"},
		{Name: "Down", URL: "https://down.example"},
		{Name: "Expired", URL: "https://expired.example"},
	}
	latest := []model.StatusRecord{
		status("https://ok.example", model.StatusOK, "2026-01-01", "2027-01-01"),
		status("https://down.example", model.StatusDown, "2026-01-01", "2027-01-01"),
		status("https://expired.example", model.StatusOK, "2025-01-01", "2027-01-01"),
	}

	snap := Build(sites, latest, now, SortName)
	c := snap.Counters
	if c.Total != 3 || c.Down != 1 || c.ExpiredSSL != 1 || c.ExpiredDomain != 0 {
		t.Fatalf("unexpected counters %+v", c)
	}

	var flagged int
	for _, r := range snap.Rows {
		if r.IsDown {
			flagged++
		}
	}
	if flagged != 2 {
		t.Fatalf("expected the down and the expired row flagged, got %d", flagged)
	}
}

func TestBuild_RecomputesFreshness(t *testing.T) {
	sites := []model.SiteRecord{{Name: "A", URL: "https://a.example"}}
	latest := []model.StatusRecord{status("https://a.example", model.StatusOK, "2025-09-01", "2027-01-01")}

	if Build(sites, latest, now, SortName).Rows[0].IsDown {
		t.Fatal("row should be up before the certificate expires")
	}
	later := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	row := Build(sites, latest, later, SortName).Rows[0]
	if !row.IsDown || !row.SSLExpired {
		t.Fatalf("stored OK must not hide an expired certificate: %+v", row)
	}
}

func TestBuild_NoHistory(t *testing.T) {
	sites := []model.SiteRecord{
		{Name: "New", URL: "https://new.example"},
		{Name: "Old", URL: "https://old.example"},
	}
	latest := []model.StatusRecord{status("https://old.example", model.StatusOK, "2026-01-01", "2027-01-01")}

	snap := Build(sites, latest, now, SortName)
	row := snap.Rows[0]
	if row.URL != "https://new.example" {
		t.Fatalf("unexpected order %+v", snap.Rows)
	}
	if !row.IsDown || row.HasHistory || row.Status != "" {
		t.Fatalf("site without history must be down: %+v", row)
	}
	if row.SSLDisplay != "N/A" || row.DomainDisplay != "N/A" {
		t.Fatalf("missing dates should render N/A: %+v", row)
	}
	if snap.Counters.ExpiredSSL != 0 || snap.Counters.Down != 1 {
		t.Fatalf("unexpected counters %+v", snap.Counters)
	}
}

func TestBuild_InvalidDatesCountAsExpired(t *testing.T) {
	sites := []model.SiteRecord{{Name: "A", URL: "https://a.example"}}
	latest := []model.StatusRecord{status("https://a.example", model.StatusOK, "garbage", "2027-01-01")}

	snap := Build(sites, latest, now, SortName)
	row := snap.Rows[0]
	if !row.IsDown || row.SSLDisplay != "Error" || snap.Counters.ExpiredSSL != 1 {
		t.Fatalf("invalid date not treated as expired: %+v %+v", row, snap.Counters)
	}
}

func TestBuild_NameFallback(t *testing.T) {
	sites := []model.SiteRecord{
		{URL: "https://www.example.com/path"},
		{URL: "::not a url"},
		{URL: "https://named-in-history.example"},
	}
	latest := []model.StatusRecord{
		{URL: "https://named-in-history.example", Name: "From History", Status: model.StatusOK, Timestamp: now},
	}

	snap := Build(sites, latest, now, SortName)
	names := map[string]string{}
	for _, r := range snap.Rows {
		names[r.URL] = r.Name
	}
	if names["https://www.example.com/path"] != "example.com" {
		t.Errorf("hostname fallback = %q", names["https://www.example.com/path"])
	}
	if names["::not a url"] != "N/A" {
		t.Errorf("unparseable fallback = %q", names["::not a url"])
	}
	if names["https://named-in-history.example"] != "From History" {
		t.Errorf("history name fallback = %q", names["https://named-in-history.example"])
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("", "https://www.example.com/path"); got != "example.com" {
		t.Errorf("got %q", got)
	}
	if got := DisplayName("  Shop ", "https://www.example.com"); got != "Shop" {
		t.Errorf("got %q", got)
	}
	if got := DisplayName("", "example.com"); got != "N/A" {
		t.Errorf("got %q", got)
	}
}

func TestBuild_HistoryOnly(t *testing.T) {
	latest := []model.StatusRecord{
		{URL: "https://b.example", Name: "B", Status: model.StatusOK, Timestamp: now, SSLExpiry: model.ParseDate("2026-01-01"), DomainExpiry: model.ParseDate("2026-01-01")},
		{URL: "https://a.example", Name: "A", Status: model.StatusDown, Timestamp: now},
	}

	snap := Build(nil, latest, now, SortName)
	if snap.Placeholder || len(snap.Rows) != 2 {
		t.Fatalf("expected rows from history, got %+v", snap)
	}
	if snap.Rows[0].Name != "A" || !snap.Rows[0].HasHistory || snap.Rows[1].IsDown {
		t.Fatalf("unexpected rows %+v", snap.Rows)
	}
}

func TestBuild_Placeholder(t *testing.T) {
	snap := Build(nil, nil, now, SortName)
	if !snap.Placeholder || len(snap.Rows) != 1 {
		t.Fatalf("expected single placeholder row, got %+v", snap)
	}
	if snap.Rows[0].Name != "Example" || snap.Counters.Total != 1 {
		t.Fatalf("unexpected placeholder %+v", snap)
	}
}

func TestBuild_LastChecked(t *testing.T) {
	sites := []model.SiteRecord{{Name: "A", URL: "https://a.example"}}
	latest := []model.StatusRecord{status("https://a.example", model.StatusOK, "2026-01-01", "2027-01-01")}

	row := Build(sites, latest, now, SortName).Rows[0]
	if row.LastChecked == nil || !row.LastChecked.Equal(now.Add(-time.Hour)) {
		t.Fatalf("last checked = %v", row.LastChecked)
	}
}
