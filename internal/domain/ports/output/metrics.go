package ports

import "time"

type MetricsProvider interface {
	IncrementHTTPRequests(method, path, status string)
	RecordHTTPRequestDuration(method, path, status string, duration time.Duration)

	IncrementGRPCRequests(method, status string)
	RecordGRPCRequestDuration(method, status string, duration time.Duration)

	IncrementDatabaseQueries(queryType string, success bool)
	RecordDatabaseQueryDuration(queryType string, duration time.Duration)

	IncrementCacheHits()
	IncrementCacheMisses()
	RecordCacheOperationDuration(operation string, duration time.Duration)

	IncrementPostOperations(operation string, success bool)
	IncrementSessionOutcomes(outcome string)
	SetActiveConnections(count int)

	SetServiceHealth(healthy bool)
}
