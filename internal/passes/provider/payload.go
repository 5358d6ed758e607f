package provider

// createPayload is the POST /passes body. Email is a pointer with omitempty so
// the key is absent, not null or "", when no email was supplied.
type createPayload struct {
	ExtID string      `json:"extId"`
	Pass  passContent `json:"pass"`
}

type passContent struct {
	NFC     nfcConfig     `json:"nfc"`
	Barcode barcodeConfig `json:"barcode"`
	Email   *fieldValue   `json:"email,omitempty"`
}

type nfcConfig struct {
	Enabled bool   `json:"enabled"`
	Source  string `json:"source"`
}

type barcodeConfig struct {
	Enabled     bool   `json:"enabled"`
	Type        string `json:"type"`
	Source      string `json:"source"`
	DisplayText bool   `json:"displayText"`
}

type fieldValue struct {
	Value string `json:"value"`
}

// sourceExtID keys NFC and barcode content to the pass's external ID.
const sourceExtID = "extId"

func newCreatePayload(externalID, email string) createPayload {
	p := createPayload{
		ExtID: externalID,
		Pass: passContent{
			NFC: nfcConfig{Enabled: true, Source: sourceExtID},
			Barcode: barcodeConfig{
				Enabled:     true,
				Type:        "qr",
				Source:      sourceExtID,
				DisplayText: true,
			},
		},
	}
	if email != "" {
		p.Pass.Email = &fieldValue{Value: email}
	}
	return p
}
