package auth

import "encoding/json"

// Sign mints an HS256 token for the given claims with the verifier's secret.
// Production tokens come from the identity provider; this exists for local
// development and tests, which need tokens the verifier will accept.
func (v *Verifier) Sign(claims Claims) (string, error) {
	headerJSON, err := json.Marshal(struct {
		Type      string `json:"typ"`
		Algorithm string `json:"alg"`
	}{Type: "JWT", Algorithm: "HS256"})
	if err != nil {
		return "", err
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + v.sign(payload), nil
}
