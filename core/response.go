package core

// Envelope is the JSON body returned by mutation endpoints.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func OK(msg string, data interface{}) Envelope {
	return Envelope{Success: true, Message: msg, Data: data}
}

// ListResponse wraps list endpoints answering `{data: [...]}`.
type ListResponse struct {
	Data interface{} `json:"data"`
}
