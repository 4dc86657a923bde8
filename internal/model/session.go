package model

// Session represents the locally held record of the connected wallet.
// Address is empty when no wallet is connected.
type Session struct {
	Address      string `json:"address,omitempty"`
	ShortAddress string `json:"shortAddress,omitempty"`
	Connected    bool   `json:"connected"`
	QR           string `json:"qr,omitempty"` // base64 PNG of the address
}
