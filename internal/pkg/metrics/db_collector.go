package metrics

import "github.com/jackc/pgx/v5/pgxpool"

// ObservePool snapshots the pgx pool state into the db gauges. The app
// drives this from a ticker; pgxpool exposes no callback to update them on
// demand.
func ObservePool(pool *pgxpool.Pool) {
	stat := pool.Stat()

	DBPoolConnections.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPoolConnections.WithLabelValues("constructing").Set(float64(stat.ConstructingConns()))
	DBPoolConnections.WithLabelValues("max").Set(float64(stat.MaxConns()))
}
