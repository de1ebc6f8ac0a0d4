package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// BannerResponse is returned by GET /.
type BannerResponse struct {
	Message string `json:"message" example:"Deal Sheet API is running"`
	Docs    string `json:"docs" example:"/swagger/index.html"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"output directory not writable"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
