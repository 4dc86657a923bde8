// Generates a fresh secp256k1 signing key and writes it to an encrypted .ckt
// key file together with the derived address and its QR code.
// Usage: go run ./cmd/keygen -out wallet.ckt
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cryptify-labs/cryptify-client/internal/crypto"
	"github.com/cryptify-labs/cryptify-client/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/skip2/go-qrcode"
	"golang.org/x/term"
)

const networkName = "linea-sepolia"

func main() {
	out := flag.String("out", "wallet.ckt", "output key file path")
	flag.Parse()

	password, err := promptPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer clear(password)

	key, err := ethcrypto.GenerateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate key:", err)
		os.Exit(1)
	}

	keyBytes := ethcrypto.FromECDSA(key)
	defer clear(keyBytes)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create QR code:", err)
		os.Exit(1)
	}
	png, err := qr.PNG(256)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate PNG:", err)
		os.Exit(1)
	}

	keyData := &model.KeyData{
		PrivateKey: keyBytes,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}

	if err := crypto.EncryptKeyFile(*out, networkName, address, base64.StdEncoding.EncodeToString(png), keyData, password); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write key file:", err)
		os.Exit(1)
	}

	fmt.Println(address)
}

func promptPassword() ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("stdin is not a terminal: run interactively to enter password")
	}

	fmt.Fprint(os.Stderr, "Enter password for new key file: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(first) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	defer clear(second)

	if string(first) != string(second) {
		clear(first)
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}
