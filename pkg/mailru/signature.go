package mailru

import (
	"crypto/md5"
	"encoding/hex"
)

// apiMethodGetInfo is the REST method name the profile request signature is
// bound to.
const apiMethodGetInfo = "users.getInfo"

// Sign computes the request signature the Mailru REST API requires for
// server-to-server calls: the lowercase hex MD5 digest of the request
// parameters concatenated with the application secret.
//
// The parameter fragments are joined without separators. The exact layout is
// part of the provider contract and must be reproduced byte-for-byte:
//
//	md5("app_id=" + clientID + "method=" + method + "secure=1session_key=" + sessionKey + clientSecret)
//
// Sign is a pure function; the same input triple always yields the same
// signature.
func Sign(clientID, method, sessionKey, clientSecret string) string {
	base := "app_id=" + clientID + "method=" + method + "secure=1session_key=" + sessionKey + clientSecret
	sum := md5.Sum([]byte(base))
	return hex.EncodeToString(sum[:])
}
