package twitter

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Credentials holds the OAuth 1.0a key material for one posting identity
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// percentEncode escapes a string per RFC 3986. Unlike url.QueryEscape it
// never emits '+' and it escapes the reserved set including !*'(), which is
// required for OAuth 1.0a signature base strings.
func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// oauthParams builds the protocol parameter set for one request
func oauthParams(creds Credentials, nonce, timestamp string) map[string]string {
	return map[string]string{
		"oauth_consumer_key":     creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        timestamp,
		"oauth_token":            creds.AccessToken,
		"oauth_version":          "1.0",
	}
}

// signatureBase builds METHOD&encode(url)&encode(sorted k=v pairs).
// params must contain both the oauth parameters and any request body
// parameters; keys and values are percent-encoded before sorting.
func signatureBase(method, rawURL string, params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)

	return strings.ToUpper(method) + "&" +
		percentEncode(rawURL) + "&" +
		percentEncode(strings.Join(pairs, "&"))
}

// sign computes base64(HMAC-SHA1(key, base)) with the OAuth signing key
// encode(consumerSecret)&encode(tokenSecret)
func sign(creds Credentials, base string) string {
	key := percentEncode(creds.ConsumerSecret) + "&" + percentEncode(creds.AccessSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// authorizationHeader builds the OAuth Authorization header value:
// comma-joined, double-quoted, percent-encoded pairs sorted by key.
func authorizationHeader(creds Credentials, method, rawURL string, bodyParams map[string]string, nonce, timestamp string) string {
	oauth := oauthParams(creds, nonce, timestamp)

	all := make(map[string]string, len(oauth)+len(bodyParams))
	for k, v := range oauth {
		all[k] = v
	}
	for k, v := range bodyParams {
		all[k] = v
	}

	oauth["oauth_signature"] = sign(creds, signatureBase(method, rawURL, all))

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(oauth[k])))
	}
	return "OAuth " + strings.Join(parts, ", ")
}
