package model

type SearchRequestBody struct {
	Query string `json:"query"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
