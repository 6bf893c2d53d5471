package common

// AuthTokenHeaderName is the gRPC metadata key carrying the bearer token on
// inbound requests.
const AuthTokenHeaderName = "authorization"

// BearerPrefix is the optional scheme prefix in front of the token value.
const BearerPrefix = "Bearer "
