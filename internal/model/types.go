package model

import (
	"strings"
	"time"
)

type SiteRecord struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	LogoURL string `json:"logo_url,omitempty"`
}

type Status string

const (
	StatusOK   Status = "OK"
	StatusDown Status = "DOWN"
)

// StatusRecord is one history row: the outcome of one check cycle for one site.
type StatusRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Status       Status    `json:"status"`
	SSLExpiry    Date      `json:"ssl_expiry"`
	DomainExpiry Date      `json:"domain_expiry"`
}

// Policy selects how the history store is reconciled each cycle.
type Policy string

const (
	PolicyAppend Policy = "append"
	PolicyUpsert Policy = "upsert"
)

func ParsePolicy(s string) (Policy, bool) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyAppend:
		return PolicyAppend, true
	case PolicyUpsert:
		return PolicyUpsert, true
	}
	return "", false
}
