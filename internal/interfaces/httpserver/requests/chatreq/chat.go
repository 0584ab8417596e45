package chatreq

// ChatRequest is the single client-facing chat entry point. UseHistory and
// SaveToDB default to true when omitted.
type ChatRequest struct {
	EndpointID string  `json:"endpoint_id" binding:"required"`
	SessionID  *string `json:"session_id"`
	Message    string  `json:"message" binding:"required"`
	ImagePath  *string `json:"image_path"`
	UseHistory *bool   `json:"use_history"`
	SaveToDB   *bool   `json:"save_to_db"`
}

func (r *ChatRequest) UseHistoryOrDefault() bool {
	if r.UseHistory == nil {
		return true
	}
	return *r.UseHistory
}

func (r *ChatRequest) SaveToDBOrDefault() bool {
	if r.SaveToDB == nil {
		return true
	}
	return *r.SaveToDB
}

func (r *ChatRequest) SessionIDOrEmpty() string {
	if r.SessionID == nil {
		return ""
	}
	return *r.SessionID
}
