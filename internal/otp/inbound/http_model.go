package inbound

type SendRequest struct {
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"`
}

type VerifyRequest struct {
	Recipient string `json:"recipient"`
	Code      string `json:"code"`
}

type ResetAttemptsRequest struct {
	Recipient string `json:"recipient"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
