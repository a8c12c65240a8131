package core

// Source is a provenance record describing where supporting content for an
// answer came from. Link is optional; an empty string means no link.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}
