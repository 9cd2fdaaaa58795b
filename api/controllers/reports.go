package controllers

import (
	"net/http"
	"time"

	"github.com/ermiasgashu/suq-backend/api/responses"
	"github.com/ermiasgashu/suq-backend/api/validators"
	"github.com/ermiasgashu/suq-backend/internal/reports"
	"github.com/ermiasgashu/suq-backend/pkg/logger"
)

// reportPeriod reads the from/to query dates, defaulting to the last 30 days.
func reportPeriod(r *http.Request) (reports.Period, error) {
	now := time.Now().UTC()
	from, err := validators.ParseQueryDate(r, "from", now.AddDate(0, 0, -30))
	if err != nil {
		return reports.Period{}, err
	}
	to, err := validators.ParseQueryDate(r, "to", now)
	if err != nil {
		return reports.Period{}, err
	}
	return reports.Period{From: from, To: to}, nil
}

// AdminCommissionReport summarizes revenue and commission across the platform.
func AdminCommissionReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := reportPeriod(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Aggregate(r.Context(), period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// VendorCommissionReport summarizes the acting vendor's delivered revenue.
func VendorCommissionReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		period, err := reportPeriod(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.AggregateForVendor(r.Context(), vendorID, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
