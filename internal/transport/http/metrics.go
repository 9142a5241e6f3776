package httptransport

import "expvar"

var (
	metricSessionCreateTotal  = expvar.NewInt("session_create_total")
	metricSessionCreateErrors = expvar.NewInt("session_create_errors_total")

	metricChipUpdateTotal  = expvar.NewInt("chip_update_total")
	metricChipUpdateErrors = expvar.NewInt("chip_update_errors_total")

	metricFinalizeTotal = expvar.NewInt("session_finalize_total")

	metricStakeCreateTotal  = expvar.NewInt("stake_create_total")
	metricStakeCreateErrors = expvar.NewInt("stake_create_errors_total")
	metricStakeSettleTotal  = expvar.NewInt("stake_settle_total")
	metricStakeReopenTotal  = expvar.NewInt("stake_reopen_total")
)
