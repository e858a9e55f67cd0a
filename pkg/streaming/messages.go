// Package streaming defines the message protocol spoken by decoder jobs.
package streaming

import "encoding/json"

// Default message type tags. Decoders differ between revisions, so the
// position tags are configurable; these are the values the stock log parser
// emits.
const (
	TypeGPS          = "GPS"
	TypeGPSPrimary   = "GPS[0]"
	TypeDoneLoading  = "messagesDoneLoading"
	TypeParserStatus = "status"
)

// DefaultPositionTypes are the tags whose batches carry position samples.
var DefaultPositionTypes = []string{TypeGPSPrimary, TypeGPS}

// Envelope wraps every message a decoder job emits.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PositionBatch is the payload of a position-type message. All arrays are
// parallel; Alt and TimeBootMs may be absent.
type PositionBatch struct {
	Lat        []int32  `json:"Lat"`
	Lng        []int32  `json:"Lng"`
	Alt        []int32  `json:"Alt,omitempty"`
	TimeBootMs []uint32 `json:"time_boot_ms,omitempty"`
}
