package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	patientsCreated   atomic.Int64
	patientsUpdated   atomic.Int64
	patientsDeleted   atomic.Int64
	predictionsLogged atomic.Int64
	latestCacheHits   atomic.Int64
	latestCacheMisses atomic.Int64
)

func IncPatientCreated()   { patientsCreated.Add(1) }
func IncPatientUpdated()   { patientsUpdated.Add(1) }
func IncPatientDeleted()   { patientsDeleted.Add(1) }
func IncPredictionLogged() { predictionsLogged.Add(1) }
func IncLatestCacheHit()   { latestCacheHits.Add(1) }
func IncLatestCacheMiss()  { latestCacheMisses.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP cardiosense_patients_created_total Number of patient records created.\n")
	fmt.Fprintf(w, "# TYPE cardiosense_patients_created_total counter\n")
	fmt.Fprintf(w, "cardiosense_patients_created_total %d\n", patientsCreated.Load())

	fmt.Fprintf(w, "# HELP cardiosense_patients_updated_total Number of patient records updated.\n")
	fmt.Fprintf(w, "# TYPE cardiosense_patients_updated_total counter\n")
	fmt.Fprintf(w, "cardiosense_patients_updated_total %d\n", patientsUpdated.Load())

	fmt.Fprintf(w, "# HELP cardiosense_patients_deleted_total Number of patient records deleted.\n")
	fmt.Fprintf(w, "# TYPE cardiosense_patients_deleted_total counter\n")
	fmt.Fprintf(w, "cardiosense_patients_deleted_total %d\n", patientsDeleted.Load())

	fmt.Fprintf(w, "# HELP cardiosense_predictions_logged_total Number of prediction log entries persisted.\n")
	fmt.Fprintf(w, "# TYPE cardiosense_predictions_logged_total counter\n")
	fmt.Fprintf(w, "cardiosense_predictions_logged_total %d\n", predictionsLogged.Load())

	fmt.Fprintf(w, "# HELP cardiosense_latest_cache_hits_total Latest-patient cache hits.\n")
	fmt.Fprintf(w, "# TYPE cardiosense_latest_cache_hits_total counter\n")
	fmt.Fprintf(w, "cardiosense_latest_cache_hits_total %d\n", latestCacheHits.Load())

	fmt.Fprintf(w, "# HELP cardiosense_latest_cache_misses_total Latest-patient cache misses.\n")
	fmt.Fprintf(w, "# TYPE cardiosense_latest_cache_misses_total counter\n")
	fmt.Fprintf(w, "cardiosense_latest_cache_misses_total %d\n", latestCacheMisses.Load())
}
