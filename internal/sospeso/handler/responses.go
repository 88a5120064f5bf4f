package handler

import (
	"time"

	"sospeso/internal/sospeso/models"
)

// VoucherSummary is the list projection: enough to render a board without
// exposing applications or consumption detail.
type VoucherSummary struct {
	ID       string        `json:"id"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Status   models.Status `json:"status"`
	IssuedAt time.Time     `json:"issued_at"`
	Amount   int           `json:"amount,omitempty"`
	Item     string        `json:"item,omitempty"`
}

// VoucherResponse is the detail projection.
type VoucherResponse struct {
	ID           string                `json:"id"`
	From         string                `json:"from"`
	To           string                `json:"to"`
	Status       models.Status         `json:"status"`
	Issuing      models.Issuing        `json:"issuing"`
	Applications []ApplicationResponse `json:"applications"`
	Consuming    *ConsumingResponse    `json:"consuming,omitempty"`
	Amount       int                   `json:"amount,omitempty"`
	Item         string                `json:"item,omitempty"`
}

type ApplicationResponse struct {
	ID          string                   `json:"id"`
	ApplicantID string                   `json:"applicant_id"`
	AppliedAt   time.Time                `json:"applied_at"`
	Content     string                   `json:"content"`
	Status      models.ApplicationStatus `json:"status"`
}

type ConsumingResponse struct {
	ID         string    `json:"id"`
	ConsumedAt time.Time `json:"consumed_at"`
	Content    string    `json:"content"`
	Memo       string    `json:"memo,omitempty"`
	ConsumerID string    `json:"consumer_id"`
	CoachID    string    `json:"coach_id"`
}

func toSummary(v models.Voucher) VoucherSummary {
	return VoucherSummary{
		ID:       v.ID.String(),
		From:     v.From,
		To:       v.To,
		Status:   models.CalcStatus(v),
		IssuedAt: v.Issuing.IssuedAt,
		Amount:   v.Amount,
		Item:     v.Item,
	}
}

// toResponse projects a voucher for the caller. The consuming memo holds
// private admin notes and is stripped for everyone else.
func toResponse(v models.Voucher, admin bool) VoucherResponse {
	resp := VoucherResponse{
		ID:           v.ID.String(),
		From:         v.From,
		To:           v.To,
		Status:       models.CalcStatus(v),
		Issuing:      v.Issuing,
		Applications: make([]ApplicationResponse, 0, len(v.ApplicationList)),
		Amount:       v.Amount,
		Item:         v.Item,
	}
	for _, app := range v.ApplicationList {
		resp.Applications = append(resp.Applications, ApplicationResponse{
			ID:          app.ID.String(),
			ApplicantID: app.ApplicantID.String(),
			AppliedAt:   app.AppliedAt,
			Content:     app.Content,
			Status:      app.Status,
		})
	}
	if v.Consuming != nil {
		consuming := &ConsumingResponse{
			ID:         v.Consuming.ID.String(),
			ConsumedAt: v.Consuming.ConsumedAt,
			Content:    v.Consuming.Content,
			ConsumerID: v.Consuming.ConsumerID.String(),
			CoachID:    v.Consuming.CoachID.String(),
		}
		if admin {
			consuming.Memo = v.Consuming.Memo
		}
		resp.Consuming = consuming
	}
	return resp
}
