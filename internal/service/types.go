package service

import "github.com/dativo-io/masker/internal/masker"

// MaskRequest asks for a list of lines to be masked. MaskNumbers overrides
// the tenant default when set. Templates are applied before the tenant's
// own templates.
type MaskRequest struct {
	TenantID    string                `json:"tenantID"`
	MaskNumbers *bool                 `json:"maskNumbers,omitempty"`
	Templates   []masker.TemplateSpec `json:"templates,omitempty"`
	Unmasked    []string              `json:"unmasked"`
}

// MaskResponse carries one masked line per requested line. On a
// configuration error Masked is empty and Errors explains why.
type MaskResponse struct {
	RequestID string          `json:"requestID"`
	Masked    []string        `json:"masked"`
	Counts    masker.Counts   `json:"counts"`
	Errors    []*masker.Error `json:"errors"`
}

// Message is one utterance of a conversation. Metadata is returned as sent.
type Message struct {
	Utterance string         `json:"utterance"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// MessageRequest asks for utterances to be masked with reconciliation diffs.
type MessageRequest struct {
	TenantID    string                `json:"tenantID"`
	MaskNumbers *bool                 `json:"maskNumbers,omitempty"`
	Templates   []masker.TemplateSpec `json:"templates,omitempty"`
	Messages    []Message             `json:"messages"`
}

// MessageResponse holds the masked messages and, per message, the
// placeholders paired with the text they replaced.
type MessageResponse struct {
	RequestID      string                 `json:"requestID"`
	MaskedMessages []Message              `json:"maskedMessages"`
	Diffs          [][]masker.MaskedToken `json:"diffs"`
	Counts         masker.Counts          `json:"counts"`
	Errors         []*masker.Error        `json:"errors"`
}

// TemplateUpdateRequest edits a tenant's persisted template list. Removals
// match templates by exact pattern source and run before updates.
type TemplateUpdateRequest struct {
	TenantID string                `json:"tenantID"`
	Updates  []masker.TemplateSpec `json:"updates"`
	Removals []string              `json:"removals"`
}

// TemplateUpdateResponse lists what changed.
type TemplateUpdateResponse struct {
	RequestID string                `json:"requestID"`
	Updated   []masker.TemplateSpec `json:"updated"`
	Removed   []masker.TemplateSpec `json:"removed"`
	Errors    []*masker.Error       `json:"errors"`
}
