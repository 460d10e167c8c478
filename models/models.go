package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// --- Envelope ---

// Envelope is the single response shape returned by the gateway for
// everything it produces itself (auth, normalized upstream failures).
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Status  int         `json:"status,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Fail builds a failure envelope.
func Fail(status int, message string) Envelope {
	return Envelope{Success: false, Message: message, Status: status}
}

// --- Auth ---

// DemoClaims are the claims carried by the static demo token. There is no
// expiry: the token is a flag, not a verifiable session.
type DemoClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    DemoUser `json:"user"`
}

type ProfileResponse struct {
	Success bool     `json:"success"`
	User    DemoUser `json:"user"`
}

// --- Gateway info ---

type HealthResponse struct {
	Status         string `json:"status"`
	Backend        bool   `json:"backend"`
	Upstream       string `json:"upstream"`
	LSTMPrediction string `json:"lstmPrediction"`
}

type InfoResponse struct {
	Message  string `json:"message"`
	Port     int    `json:"port"`
	Upstream string `json:"upstream"`
}
