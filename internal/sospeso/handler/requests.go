package handler

// IssueRequest is the body for POST /sospeso.
type IssueRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	PaidAmount int64  `json:"paid_amount,omitempty"`
}

// IssueBundleRequest is the body for POST /sospeso/bundle.
type IssueBundleRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int    `json:"amount"`
	Item   string `json:"item,omitempty"`
}

// ApplyRequest is the body for POST /sospeso/{id}/applications. The
// applicant is the authenticated actor.
type ApplyRequest struct {
	Content string `json:"content,omitempty"`
}

// ConsumeRequest is the body for POST /sospeso/{id}/consume.
type ConsumeRequest struct {
	ConsumerID string `json:"consumer_id"`
	CoachID    string `json:"coach_id"`
	Content    string `json:"content,omitempty"`
	Memo       string `json:"memo,omitempty"`
}
