package dto

// StatusResponse is the body of a device's GET /status.
type StatusResponse struct {
	Enter int64 `json:"enter"`
	Exit  int64 `json:"exit"`
	Total int64 `json:"total"`
}
