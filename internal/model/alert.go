package model

import "time"

// NetworkAlert is the "wrong network" alert shown when the wallet is attached
// to a chain other than the configured target. At most one alert exists at a
// time; a renewed mismatch replaces it and restarts the dismissal window.
type NetworkAlert struct {
	Active          bool          `json:"active"`
	ObservedChainID uint64        `json:"observedChainId"`
	TargetChainID   uint64        `json:"targetChainId"`
	RaisedAt        time.Time     `json:"raisedAt"`
	ExpiresAfter    time.Duration `json:"expiresAfter"`
}
