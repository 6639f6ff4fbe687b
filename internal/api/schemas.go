package api

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ProcessResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
