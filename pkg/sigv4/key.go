package sigv4

import (
	"strings"
	"time"
)

// Scope identifies the day, region and service a signature is bound to
type Scope struct {
	Date    string
	Region  string
	Service string
}

// NewScope builds the credential scope for t
func NewScope(t time.Time, region, service string) Scope {
	return Scope{
		Date:    t.UTC().Format(ShortTimeFormat),
		Region:  region,
		Service: service,
	}
}

// String formats the scope as date/region/service/aws4_request
func (s Scope) String() string {
	return strings.Join([]string{s.Date, s.Region, s.Service, scopeTerminator}, "/")
}

// DeriveSigningKey derives the request scoped signing key from the secret access key.
//
// Each stage feeds its raw HMAC output as the key of the next stage:
//
//	kDate    = HMAC("AWS4"+secret, date)
//	kRegion  = HMAC(kDate, region)
//	kService = HMAC(kRegion, service)
//	kSigning = HMAC(kService, "aws4_request")
func DeriveSigningKey(secretAccessKey, date, region, service string) Key {
	dateKey := HMACSHA256(Key(secretKeyPrefix+secretAccessKey), date)
	dateRegionKey := HMACSHA256(dateKey, region)
	dateRegionServiceKey := HMACSHA256(dateRegionKey, service)
	return HMACSHA256(dateRegionServiceKey, scopeTerminator)
}

// DeriveScopedKey derives the signing key for scope
func DeriveScopedKey(secretAccessKey string, scope Scope) Key {
	return DeriveSigningKey(secretAccessKey, scope.Date, scope.Region, scope.Service)
}
