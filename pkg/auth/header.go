package auth

import (
	"strings"

	"github.com/wzshiming/s3sign/pkg/sigv4"
)

// Authorization is a parsed SigV4 Authorization header
type Authorization struct {
	AccessKeyID   string
	Scope         sigv4.Scope
	SignedHeaders []string
	Signature     string
}

// ParseAuthorization parses
//
//	AWS4-HMAC-SHA256 Credential=AKID/20240101/region/s3/aws4_request, SignedHeaders=host;x-amz-date, Signature=...
func ParseAuthorization(header string) (*Authorization, error) {
	if !strings.HasPrefix(header, sigv4.Algorithm+" ") {
		return nil, NewAuthError("AuthorizationHeaderMalformed", "Invalid authorization header format")
	}

	params := make(map[string]string)
	for _, part := range strings.Split(strings.TrimPrefix(header, sigv4.Algorithm+" "), ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 {
			params[kv[0]] = kv[1]
		}
	}

	credential := params["Credential"]
	signature := params["Signature"]
	signedHeaders := params["SignedHeaders"]
	if credential == "" || signature == "" || signedHeaders == "" {
		return nil, NewAuthError("AuthorizationHeaderMalformed", "Missing required authorization parameters")
	}

	// Credential: accessKeyID/date/region/service/aws4_request
	credParts := strings.Split(credential, "/")
	if len(credParts) != 5 || credParts[4] != "aws4_request" || credParts[0] == "" {
		return nil, NewAuthError("AuthorizationHeaderMalformed", "Invalid credential format")
	}

	return &Authorization{
		AccessKeyID: credParts[0],
		Scope: sigv4.Scope{
			Date:    credParts[1],
			Region:  credParts[2],
			Service: credParts[3],
		},
		SignedHeaders: strings.Split(signedHeaders, ";"),
		Signature:     signature,
	}, nil
}
