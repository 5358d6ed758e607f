package models

// PassRequest is the caller-owned input to pass issuance.
// ExternalID is the idempotency key at the provider and must be stable per user
// (an email, a wallet address or an internal UUID).
type PassRequest struct {
	ExternalID string
	Email      string // optional; sent to the provider only when non-empty

	// Reserved annotations. Neither is sent to the provider.
	WalletAddress string
	Metadata      map[string]any
}

// HasEmail reports whether a contact email was supplied.
func (r PassRequest) HasEmail() bool {
	return r.Email != ""
}

// PassRecord is the normalized pass returned by the provider.
// CreatedAt stays a string so a provider timestamp is passed through untouched.
type PassRecord struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	NFCEnabled bool   `json:"nfcEnabled"`
	ExternalID string `json:"externalId"`
	CreatedAt  string `json:"createdAt"`
}
