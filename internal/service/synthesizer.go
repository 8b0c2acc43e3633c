package service

import (
	"time"

	"sitewatch/internal/model"
)

// Synthesize folds one site's probe results into its history row. The row is
// OK only when the site answered and both expiry lookups produced a date; a
// failed lookup is treated the same as an outage.
func Synthesize(site model.SiteRecord, res model.ProbeResult, now time.Time) model.StatusRecord {
	status := model.StatusDown
	if res.Reachable && res.SSL.OK() && res.Domain.OK() {
		status = model.StatusOK
	}
	return model.StatusRecord{
		Timestamp:    now.UTC().Truncate(time.Second),
		Name:         site.Name,
		URL:          site.URL,
		Status:       status,
		SSLExpiry:    res.SSL.Date(),
		DomainExpiry: res.Domain.Date(),
	}
}
