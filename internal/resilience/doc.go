// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes a circuit breaker implementation that shields the poll cycle
// from a flapping remote API.
//
// The package supports:
//   - Circuit breakers for the platform catalog and announcement endpoints
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.CatalogFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callRemoteService()
//	})
package resilience
