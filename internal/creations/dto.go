package creations

import "time"

// CreationResponse mirrors a creations row.
type CreationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Type      Type      `json:"type"`
	Publish   bool      `json:"publish"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listResponse struct {
	Success   bool               `json:"success"`
	Creations []CreationResponse `json:"creations"`
}

type toggleLikeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type togglePublishRequest struct {
	CreationID string `json:"creationId"`
	Publish    *bool  `json:"publish"`
}

type togglePublishResponse struct {
	Success    bool   `json:"success"`
	CreationID string `json:"creationId"`
	Publish    bool   `json:"publish"`
}

func toResponse(c Creation) CreationResponse {
	likes := []string(c.Likes)
	if likes == nil {
		likes = []string{}
	}
	return CreationResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Prompt:    c.Prompt,
		Content:   c.Content,
		Type:      c.Type,
		Publish:   c.Publish,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toResponses(items []Creation) []CreationResponse {
	out := make([]CreationResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toResponse(c))
	}
	return out
}
