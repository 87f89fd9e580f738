package http3

import (
	"github.com/francoispqt/gojay"
)

// DebugSnapshot is a diagnostic dump of a Context's registry sizes, encoded
// with gojay rather than encoding/json to match the teacher's own
// high-throughput JSON logging path (its zap/gojay pairing for structured
// fields on the hot path).
type DebugSnapshot struct {
	ConnectionsByMasterID int `json:"connections_by_master_id"`
}

var _ gojay.MarshalerJSONObject = (*DebugSnapshot)(nil)

// MarshalJSONObject implements gojay.MarshalerJSONObject.
func (s *DebugSnapshot) MarshalJSONObject(enc *gojay.Encoder) {
	enc.IntKey("connections_by_master_id", s.ConnectionsByMasterID)
}

// IsNil implements gojay.MarshalerJSONObject.
func (s *DebugSnapshot) IsNil() bool { return s == nil }

// Snapshot builds a DebugSnapshot of the context's current registry state.
func (ctx *Context) Snapshot() *DebugSnapshot {
	return &DebugSnapshot{ConnectionsByMasterID: ctx.registry.Len()}
}

// MarshalSnapshot encodes the context's current snapshot as JSON bytes,
// e.g. for an admin/debug HTTP handler.
func (ctx *Context) MarshalSnapshot() ([]byte, error) {
	return gojay.MarshalJSONObject(ctx.Snapshot())
}
