package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// PermitParams is the signed body of a permit.
type PermitParams struct {
	PermitName    string   `json:"permit_name"`
	AllowedTokens []string `json:"allowed_tokens"`
	ChainID       string   `json:"chain_id"`
	Permissions   []string `json:"permissions"`
}

// Permit is a PermitParams signed by the holder's ed25519 key.
type Permit struct {
	Params    PermitParams `json:"params"`
	PublicKey string       `json:"pub_key"`
	Signature string       `json:"signature"`
}

// SignBytes is the canonical encoding covered by the signature.
func (p PermitParams) SignBytes() []byte {
	// struct field order is fixed, so json.Marshal is deterministic here
	data, _ := json.Marshal(p)
	return data
}

// SignPermit signs params and returns the permit encoded as a token.
func SignPermit(key ed25519.PrivateKey, params PermitParams) (string, error) {
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return "", fmt.Errorf("%w: unexpected key type", ErrInvalidPermit)
	}
	p := Permit{
		Params:    params,
		PublicKey: hex.EncodeToString(pub),
		Signature: base64.StdEncoding.EncodeToString(ed25519.Sign(key, params.SignBytes())),
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParsePermit decodes a token produced by SignPermit without verifying it.
func ParsePermit(token string) (*Permit, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding: %v", ErrInvalidPermit, err)
	}
	var p Permit
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidPermit, err)
	}
	return &p, nil
}

// DefaultPermission is the permission a permit must grant when the policy
// names none.
const DefaultPermission = "owner"

// PermitPolicy says which permits a PermitValidator accepts.
type PermitPolicy struct {
	PermitName   string
	AllowedToken string
	// ChainID, when set, must match the permit's chain_id.
	ChainID string
	// Permission must appear in the permit's permissions. Empty means
	// DefaultPermission.
	Permission string
}

// PermitValidator verifies permits locally. The identity is the hex-encoded
// ed25519 public key of the signer.
type PermitValidator struct {
	policy PermitPolicy

	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewPermitValidator accepts permits matching policy.
func NewPermitValidator(policy PermitPolicy) *PermitValidator {
	if policy.Permission == "" {
		policy.Permission = DefaultPermission
	}
	return &PermitValidator{
		policy:  policy,
		revoked: make(map[string]struct{}),
	}
}

// Revoke rejects future use of the named permit signed by publicKey.
func (v *PermitValidator) Revoke(publicKey, permitName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revoked[publicKey+"/"+permitName] = struct{}{}
}

func (v *PermitValidator) isRevoked(publicKey, permitName string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.revoked[publicKey+"/"+permitName]
	return ok
}

func (v *PermitValidator) Validate(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	p, err := ParsePermit(token)
	if err != nil {
		return nil, err
	}

	if p.Params.PermitName != v.policy.PermitName {
		return nil, fmt.Errorf("%w: unexpected permit name %q", ErrInvalidPermit, p.Params.PermitName)
	}
	if !slices.Contains(p.Params.AllowedTokens, v.policy.AllowedToken) {
		return nil, fmt.Errorf("%w: %q is not an allowed token", ErrInvalidPermit, v.policy.AllowedToken)
	}
	if v.policy.ChainID != "" && p.Params.ChainID != v.policy.ChainID {
		return nil, fmt.Errorf("%w: permit is for chain %q", ErrInvalidPermit, p.Params.ChainID)
	}
	if !slices.Contains(p.Params.Permissions, v.policy.Permission) {
		return nil, fmt.Errorf("%w: permit does not grant %q", ErrInvalidPermit, v.policy.Permission)
	}

	pub, err := hex.DecodeString(p.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: malformed public key", ErrInvalidPermit)
	}
	sig, err := base64.StdEncoding.DecodeString(p.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", ErrInvalidPermit)
	}
	if !ed25519.Verify(pub, p.Params.SignBytes(), sig) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidPermit)
	}

	if v.isRevoked(p.PublicKey, p.Params.PermitName) {
		return nil, fmt.Errorf("%w: permit %q revoked", ErrInvalidPermit, p.Params.PermitName)
	}

	return &Identity{PublicKey: p.PublicKey}, nil
}
