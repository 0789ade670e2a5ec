package health

// healthResponse represents the health status of the API
type healthResponse struct {
	Status    string `json:"status"`    // ok or unhealthy
	Timestamp string `json:"timestamp"` // current server timestamp in RFC3339 format
	Uptime    string `json:"uptime"`    // server uptime since start
}
