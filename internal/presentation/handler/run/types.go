package run

type runRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Input    string `json:"input,omitempty"`
}

type runResponse struct {
	Output string `json:"output"`
}
