package model

// KeyFile represents .ckt key file structure
type KeyFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// KeyData represents decrypted signing key material
type KeyData struct {
	PrivateKey []byte `json:"privateKey"` // 32-byte secp256k1 key (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}
