// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package metrics

import "github.com/prometheus/client_golang/prometheus"

var sqlErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sql_errors_total",
		Help: "Count of SQL errors surfaced by the GORM error-solve callback, by caller and table.",
	},
	[]string{"caller", "table"},
)

func init() {
	prometheus.MustRegister(sqlErrorsTotal)
}

// RecordSQLError increments the error counter for the given caller/table.
// errMsg is accepted for future use (e.g. logging) but is not used as a
// metric label to avoid unbounded label cardinality.
func RecordSQLError(caller, table, errMsg string) {
	sqlErrorsTotal.WithLabelValues(caller, table).Inc()
}
