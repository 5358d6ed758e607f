package provider

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Fields is what a ShapeMatcher pulls out of a provider payload before the
// client applies path-specific defaults.
type Fields struct {
	ID         string
	URL        string
	NFCEnabled bool
	ExternalID string
	CreatedAt  string
}

// ShapeMatcher recognizes one provider payload layout. Match returns false
// when the body is not in its layout or carries no download URL.
type ShapeMatcher struct {
	Name  string
	Match func(body []byte) (Fields, bool)
}

// EnvelopeShape reads the JSON:API style payload:
//
//	{"data": {"id": "...", "attributes": {"downloadUrl", "nfc", "extId", "createdAt"}}}
var EnvelopeShape = ShapeMatcher{
	Name: "envelope",
	Match: func(body []byte) (Fields, bool) {
		top, ok := object(body)
		if !ok {
			return Fields{}, false
		}
		data, ok := object(top["data"])
		if !ok {
			return Fields{}, false
		}
		attrs, ok := object(data["attributes"])
		if !ok {
			return Fields{}, false
		}
		url := text(attrs["downloadUrl"])
		if url == "" {
			return Fields{}, false
		}
		return Fields{
			ID:         text(data["id"]),
			URL:        url,
			NFCEnabled: nfcFlag(attrs["nfc"]),
			ExternalID: text(attrs["extId"]),
			CreatedAt:  text(attrs["createdAt"]),
		}, true
	},
}

// FlatShape reads the flat payload:
//
//	{"id", "url" | "passUrl", "passContent": {"nfc": {"enabled"}}, "extId", "createdAt"}
var FlatShape = ShapeMatcher{
	Name: "flat",
	Match: func(body []byte) (Fields, bool) {
		top, ok := object(body)
		if !ok {
			return Fields{}, false
		}
		url := text(top["url"])
		if url == "" {
			url = text(top["passUrl"])
		}
		if url == "" {
			return Fields{}, false
		}
		var nfc bool
		if content, ok := object(top["passContent"]); ok {
			if n, ok := object(content["nfc"]); ok {
				nfc = truthy(n["enabled"])
			}
		}
		return Fields{
			ID:         text(top["id"]),
			URL:        url,
			NFCEnabled: nfc,
			ExternalID: text(top["extId"]),
			CreatedAt:  text(top["createdAt"]),
		}, true
	},
}

// DefaultShapes is the order matchers are tried in when none are configured.
func DefaultShapes() []ShapeMatcher {
	return []ShapeMatcher{EnvelopeShape, FlatShape}
}

// normalize runs the matchers in order and returns the first match.
func normalize(body []byte, shapes []ShapeMatcher) (Fields, string, bool) {
	for _, shape := range shapes {
		if shape.Match == nil {
			continue
		}
		if fields, ok := shape.Match(body); ok {
			return fields, shape.Name, true
		}
	}
	return Fields{}, "", false
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// text returns a JSON string or number as text; anything else is "".
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	}
	return ""
}

// truthy mirrors how loosely typed providers encode flags: absent, null,
// false, 0 and "" are false; everything else is true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return f != 0
	}
	return true
}

// nfcFlag handles the envelope's nfc attribute, which is either a flag or an
// object. An object counts as enabled unless its "enabled" member is falsy.
func nfcFlag(raw json.RawMessage) bool {
	if obj, ok := object(raw); ok {
		if enabled, present := obj["enabled"]; present {
			return truthy(enabled)
		}
		return true
	}
	return truthy(raw)
}
