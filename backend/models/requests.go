package models

type AddExpRequest struct {
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}

type TrackRequest struct {
	TrackingType string `json:"tracking_type"`
	Increment    int64  `json:"increment"`
}

type CommandRequest struct {
	Command string `json:"command"`
}

type QuestProgressRequest struct {
	TrackingType string `json:"tracking_type"`
	Value        int64  `json:"value"`
	Scope        string `json:"scope"`
}

type RebirthRequest struct {
	KeepItemID string `json:"keep_item_id"`
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}
