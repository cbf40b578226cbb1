package analytics

import (
	"net/http"
	"strings"

	"github.com/Shashankphatkure/equico-app/pkg/enums"
)

// periodFromQuery reads ?period=; anything unrecognised falls back to 30d.
func periodFromQuery(r *http.Request) enums.AnalyticsPeriod {
	return enums.ParseAnalyticsPeriod(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period"))))
}
