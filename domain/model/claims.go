package model

import "github.com/golang-jwt/jwt"

// TriggerClaims are carried by the bearer token of the HTTP trigger API
type TriggerClaims struct {
	Scope string `json:"scope"`
	jwt.StandardClaims
}

// ScopeRun allows triggering runs and reading the queue status
const ScopeRun = "runs"
