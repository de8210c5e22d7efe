package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// AmountMismatchResponse carries the expected vs provided amounts for payment validation failures.
type AmountMismatchResponse struct {
	Error    string  `json:"error" example:"amount mismatch"`
	Expected float64 `json:"expected" example:"25.00"`
	Provided float64 `json:"provided" example:"20.00"`
}
