package analytics

import (
	"bytes"
	"net/http"

	"github.com/Shashankphatkure/equico-app/api/controllers/callercontext"
	"github.com/Shashankphatkure/equico-app/api/responses"
	"github.com/Shashankphatkure/equico-app/internal/analytics"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

const exportFilename = "analytics.csv"

// ShopAnalytics returns the dashboard for the caller's shop.
func ShopAnalytics(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if service == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		ownerID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Dashboard(ctx, ownerID, periodFromQuery(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ShopAnalyticsExport streams the per-day rows as a CSV attachment.
func ShopAnalyticsExport(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if service == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		ownerID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := service.Export(ctx, ownerID, periodFromQuery(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// render fully before committing headers so a failure can still be a JSON error
		var buf bytes.Buffer
		if err := analytics.WriteCSV(&buf, rows); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render analytics export"))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
