package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vastra-shop/backend/api/responses"
	"github.com/vastra-shop/backend/api/validators"
	ledgersvc "github.com/vastra-shop/backend/internal/ledger"
	pkgerrors "github.com/vastra-shop/backend/pkg/errors"
	"github.com/vastra-shop/backend/pkg/logger"
	"github.com/vastra-shop/backend/pkg/pagination"
)

// LedgerReport aggregates ledger entries over a date range for operators.
func LedgerReport(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Report(r.Context(), ledgersvc.ReportParams{
			From:   from,
			To:     to,
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newLedgerReportView(report))
	}
}

// LedgerExport streams the range as CSV.
func LedgerExport(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("ledger_%s_%s.csv", from.Format("20060102"), to.Format("20060102"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		if err := svc.ExportCSV(r.Context(), w, from, to); err != nil {
			// headers are already out; log instead of rewriting the response
			if logg != nil {
				logg.Error(r.Context(), "ledger export failed", err)
			}
		}
	}
}

func reportRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	return *from, *to, nil
}
