package models

// FetchResult is the uniform outcome of a provider invocation. Every call
// path through the dispatcher terminates in one of the two variants: a
// Success carrying a normalized value map, or a Failure carrying an error
// message. Transport and provider errors never escape as panics or raw
// errors past the dispatcher.
type FetchResult struct {
	Success  bool                   `json:"success"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SuccessResult builds a successful fetch result.
func SuccessResult(data map[string]interface{}, metadata map[string]interface{}) *FetchResult {
	return &FetchResult{
		Success:  true,
		Data:     data,
		Metadata: metadata,
	}
}

// FailureResult builds a failed fetch result.
func FailureResult(errMsg string, metadata map[string]interface{}) *FetchResult {
	return &FetchResult{
		Success:  false,
		Error:    errMsg,
		Metadata: metadata,
	}
}
