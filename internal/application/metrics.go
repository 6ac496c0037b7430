package application

import "expvar"

// Counters published under "storefront" on the debug vars endpoint.
var metrics = expvar.NewMap("storefront")

const (
	metricSignupsStarted   = "signups_started"
	metricCodesIssued      = "codes_issued"
	metricVerifications    = "verifications_succeeded"
	metricVerifyFailures   = "verifications_failed"
	metricLogins           = "logins"
	metricLoginFailures    = "login_failures"
	metricCartAdds         = "cart_adds"
	metricOrdersCreated    = "orders_created"
	metricMailFailures     = "mail_failures"
	metricIndexingFailures = "search_index_failures"
)

func incr(name string) { metrics.Add(name, 1) }
