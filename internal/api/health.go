package api

import (
	"encoding/json"
	"net/http"
	"time"

	"stratus-efb/chartvault/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		sqliteStatus := "ok"
		sqliteDetails := "Metadata store reachable"
		if err := db.Ping(); err != nil {
			sqliteStatus = "down"
			sqliteDetails = err.Error()
		}
		services["sqlite"] = entities.ServiceStatus{
			Status:  sqliteStatus,
			Details: sqliteDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		uptime := time.Since(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
