// Package wire reassembles streamed chat responses into typed protocol
// events. Gateways deliver newline-delimited `data: <payload>` lines in
// arbitrarily sized chunks; LineBuffer restores line boundaries and Decode
// turns each complete line into Event values. Decoding is tolerant by
// construction: malformed or unrecognized input becomes Ignored, never an
// error, so a bad line can never take down an in-flight stream.
package wire
