package twitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unreserved passthrough", "AZaz09-._~", "AZaz09-._~"},
		{"space", "a b", "a%20b"},
		{"plus is escaped", "a+b", "a%2Bb"},
		{"rfc3986 reserved", "!*'()", "%21%2A%27%28%29"},
		{"ampersand and equals", "k=v&x", "k%3Dv%26x"},
		{"unicode", "Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"url", "https://api.twitter.com/2/tweets", "https%3A%2F%2Fapi.twitter.com%2F2%2Ftweets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentEncode(tt.input))
		})
	}
}

func TestSignatureBase_SortsParameters(t *testing.T) {
	params := map[string]string{
		"b": "2",
		"a": "1",
		"c": "3",
	}
	base := signatureBase("post", "https://example.com/path", params)

	assert.True(t, strings.HasPrefix(base, "POST&https%3A%2F%2Fexample.com%2Fpath&"))
	// Sorted k=v pairs, double-encoded in the base string
	assert.Contains(t, base, "a%3D1%26b%3D2%26c%3D3")
}

func TestAuthorizationHeader_Deterministic(t *testing.T) {
	creds := Credentials{
		ConsumerKey:    "xvz1evFS4wEEPTGEFPHBog",
		ConsumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		AccessToken:    "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		AccessSecret:   "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	}

	const nonce = "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"
	const timestamp = "1318622958"

	first := authorizationHeader(creds, "POST", "https://api.twitter.com/2/tweets", nil, nonce, timestamp)
	second := authorizationHeader(creds, "POST", "https://api.twitter.com/2/tweets", nil, nonce, timestamp)

	// Byte-identical for fixed inputs
	assert.Equal(t, first, second)

	assert.True(t, strings.HasPrefix(first, "OAuth "))
	assert.Contains(t, first, `oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`)
	assert.Contains(t, first, `oauth_signature_method="HMAC-SHA1"`)
	assert.Contains(t, first, `oauth_timestamp="1318622958"`)
	assert.Contains(t, first, `oauth_version="1.0"`)
	assert.Contains(t, first, `oauth_signature="`)

	// Keys are sorted
	sigIdx := strings.Index(first, "oauth_signature=")
	nonceIdx := strings.Index(first, "oauth_nonce=")
	keyIdx := strings.Index(first, "oauth_consumer_key=")
	assert.Less(t, keyIdx, nonceIdx)
	assert.Less(t, nonceIdx, sigIdx)
}

func TestAuthorizationHeader_BodyParamsAffectSignature(t *testing.T) {
	creds := Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	}

	withBody := authorizationHeader(creds, "POST", "https://example.com/upload", map[string]string{"media_data": "AAAA"}, "n", "1")
	withoutBody := authorizationHeader(creds, "POST", "https://example.com/upload", nil, "n", "1")

	// Body params participate in the signature but not in the header params
	assert.NotEqual(t, withBody, withoutBody)
	assert.NotContains(t, withBody, "media_data")
}
