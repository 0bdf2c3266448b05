// Package route picks the backend dialect for a chat turn. The decision is
// a pure function of the model identifier and an optional source-gateway
// tag: no I/O, no state, computed once before the network call.
package route

import "strings"

// Dialect is the response envelope shape a backend gateway speaks.
type Dialect string

const (
	// FlexibleCompletions is the hand-parsed endpoint for gateways that
	// emit a non-standard response envelope.
	FlexibleCompletions Dialect = "flexible-completions"

	// NormalizedSDK is the endpoint whose responses follow the standard
	// delta-choices envelope and can be consumed through the SDK client.
	NormalizedSDK Dialect = "normalized-sdk"
)

// Decision is the routing outcome for one request.
type Decision struct {
	Dialect Dialect
}

// Gateways that normalize upstream responses to the standard envelope. A
// model id prefixed with one of these is served normalized regardless of
// what the rest of the id says.
var normalizingGateways = []string{
	"openrouter",
	"together",
	"groq",
	"cerebras",
	"anyscale",
}

// Select maps a model identifier plus optional source gateway to the
// dialect that must serve it. All comparisons are case-insensitive.
//
// Fireworks and direct DeepSeek backends emit an envelope the normalized
// client cannot parse, so both route to the flexible endpoint. The
// deepseek/ prefix denotes unambiguous direct access and is trusted over
// the gateway tag; a bare DeepSeek model name with no gateway hint takes
// the normalized default.
func Select(modelID, sourceGateway string) Decision {
	model := strings.ToLower(modelID)
	gateway := strings.ToLower(sourceGateway)

	// Covers both "fireworks/..." and "accounts/fireworks/..." forms.
	isFireworks := strings.Contains(model, "fireworks") || gateway == "fireworks"

	isDeepSeekPrefixed := strings.HasPrefix(model, "deepseek/")

	hasNormalizingPrefix := false
	for _, g := range normalizingGateways {
		if strings.HasPrefix(model, g+"/") {
			hasNormalizingPrefix = true
			break
		}
	}

	needsFlexibleDeepSeek := (isDeepSeekPrefixed && !hasNormalizingPrefix) || gateway == "deepseek"

	if isFireworks || needsFlexibleDeepSeek {
		return Decision{Dialect: FlexibleCompletions}
	}
	return Decision{Dialect: NormalizedSDK}
}
