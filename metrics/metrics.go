package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level collectors registered via promauto so the simulators can
// record without holding a registry reference.

var (
	// ActiveVehicles tracks the live vehicle population.
	ActiveVehicles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citysim_vehicles_active",
		Help: "Number of vehicles currently on the road network",
	})

	// VehiclesSpawned counts vehicles created by the traffic simulator.
	VehiclesSpawned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_vehicles_spawned_total",
		Help: "Total vehicles spawned",
	})

	// VehicleArrivals counts vehicles that reached their destination.
	VehicleArrivals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_vehicle_arrivals_total",
		Help: "Total vehicles that completed their path",
	})

	// CommuteFailures counts commuters that ended a cycle in the failed state.
	CommuteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_commute_failures_total",
		Help: "Total commuters that failed to reach work",
	})

	// JobsRevoked counts employment revocations fed back from failed commutes.
	JobsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_jobs_revoked_total",
		Help: "Total jobs revoked after failed commutes",
	})

	// PathCacheHits and PathCacheMisses measure grid path cache efficiency.
	PathCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_path_cache_hits_total",
		Help: "Grid pathfinder cache hits",
	})
	PathCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_path_cache_misses_total",
		Help: "Grid pathfinder cache misses",
	})

	// SearchExhaustions counts A* watchdog trips.
	SearchExhaustions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_path_search_exhaustions_total",
		Help: "Pathfinding searches aborted by the iteration watchdog",
	})

	// GraphRebuilds counts full road network reconstructions.
	GraphRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citysim_graph_rebuilds_total",
		Help: "Road network graph rebuilds",
	})

	// TickDuration measures how long one synchronous simulation tick takes.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "citysim_tick_duration_seconds",
		Help:    "Wall time of one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
)
