package dm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Result is a produced reply plus which strategy produced it.
type Result struct {
	Text   string
	UsedAI bool
}

// Relay tries the external narrator first when one is configured and falls
// back to the scripted generator on any failure. From the caller's side a
// reply is always produced; which path produced it only shows up in the
// result flag and the logs.
type Relay struct {
	primary  Narrator // nil in scripted-only mode
	fallback Narrator
	timeout  time.Duration
	log      *zap.Logger
}

// NewRelay wires the strategies once at startup. primary may be nil.
func NewRelay(primary Narrator, fallback Narrator, timeout time.Duration, log *zap.Logger) *Relay {
	return &Relay{primary: primary, fallback: fallback, timeout: timeout, log: log}
}

func (r *Relay) Respond(ctx context.Context, req Request) Result {
	if r.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		text, err := r.primary.Reply(cctx, req)
		cancel()
		if err == nil {
			return Result{Text: text, UsedAI: true}
		}
		r.log.Warn("external narrator failed, falling back to scripted reply", zap.Error(err))
	}

	text, err := r.fallback.Reply(ctx, req)
	if err != nil {
		r.log.Error("scripted narrator failed", zap.Error(err))
		return Result{Text: "The DM ponders your action. What do you do next?"}
	}
	return Result{Text: text}
}
