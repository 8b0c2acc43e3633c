package model

import (
	"errors"
	"time"
)

// ErrNoExpiry is the failure for a lookup that succeeded but carried no date.
var ErrNoExpiry = errors.New("no expiration date")

// Expiry is the outcome of an expiry probe: a date, or the reason none could
// be obtained.
type Expiry struct {
	At  time.Time
	Err error
}

func ExpiresAt(t time.Time) Expiry {
	if t.IsZero() {
		return Expiry{Err: ErrNoExpiry}
	}
	return Expiry{At: t}
}

func ExpiryFailed(err error) Expiry {
	if err == nil {
		err = ErrNoExpiry
	}
	return Expiry{Err: err}
}

func (e Expiry) OK() bool { return e.Err == nil && !e.At.IsZero() }

// Date is the persisted form; failed probes store an absent date.
func (e Expiry) Date() Date {
	if !e.OK() {
		return Date{}
	}
	return NewDate(e.At)
}

func (e Expiry) Reason() string {
	if e.OK() {
		return ""
	}
	if e.Err == nil {
		return ErrNoExpiry.Error()
	}
	return e.Err.Error()
}

type ProbeResult struct {
	Reachable bool
	SSL       Expiry
	Domain    Expiry
}
