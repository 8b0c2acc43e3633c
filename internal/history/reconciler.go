package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"go.uber.org/zap"

	"sitewatch/internal/model"
	"sitewatch/internal/storage"
	"sitewatch/internal/utils"
)

// Reconciler writes check results to the status log under one policy.
//
// With PolicyAppend every result becomes a new row and the log keeps full
// history. With PolicyUpsert the last row for the URL is overwritten, which
// bounds the log to one row per site at the cost of losing history.
type Reconciler struct {
	Table  storage.HistoryTable
	Policy model.Policy
}

func NewReconciler(table storage.HistoryTable, policy model.Policy) *Reconciler {
	if policy == "" {
		policy = model.PolicyAppend
	}
	return &Reconciler{Table: table, Policy: policy}
}

func (r *Reconciler) Record(ctx context.Context, rec model.StatusRecord) error {
	if r.Policy != model.PolicyUpsert {
		return r.Table.Append(ctx, rec)
	}

	pos, found, err := r.Table.FindByURL(ctx, rec.URL)
	if err != nil {
		return err
	}
	if !found {
		return r.Table.Append(ctx, rec)
	}

	if ce := utils.Log.Check(zap.DebugLevel, "replacing history row"); ce != nil {
		if rows, err := r.Table.Rows(ctx); err == nil && pos < len(rows) {
			ce.Write(
				zap.String("url", rec.URL),
				zap.Int("position", pos),
				zap.String("diff", Diff(rows[pos], rec)),
			)
		}
	}
	return r.Table.Update(ctx, pos, rec)
}

// Latest returns one row per URL, whichever policy wrote the log.
func (r *Reconciler) Latest(ctx context.Context) ([]model.StatusRecord, error) {
	rows, err := r.Table.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return LatestPerURL(rows), nil
}

// LatestPerURL keeps, for each URL, the row with the greatest timestamp;
// on equal timestamps the later row wins. Output follows the order in which
// URLs first appear. Rows without a URL are dropped.
func LatestPerURL(rows []model.StatusRecord) []model.StatusRecord {
	index := make(map[string]int)
	var out []model.StatusRecord
	for _, row := range rows {
		if row.URL == "" {
			continue
		}
		i, seen := index[row.URL]
		if !seen {
			index[row.URL] = len(out)
			out = append(out, row)
			continue
		}
		if !row.Timestamp.Before(out[i].Timestamp) {
			out[i] = row
		}
	}
	return out
}

// Diff renders a unified diff between two rows, one field per line.
func Diff(before, after model.StatusRecord) string {
	a, b := describe(before), describe(after)
	edits := myers.ComputeEdits(span.URIFromPath("status_log"), a, b)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", a, edits))
}

func describe(rec model.StatusRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "timestamp: %s\n", rec.Timestamp.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "name: %s\n", rec.Name)
	fmt.Fprintf(&sb, "url: %s\n", rec.URL)
	fmt.Fprintf(&sb, "status: %s\n", rec.Status)
	fmt.Fprintf(&sb, "ssl_expiry: %s\n", rec.SSLExpiry.String())
	fmt.Fprintf(&sb, "domain_expiry: %s\n", rec.DomainExpiry.String())
	return sb.String()
}
