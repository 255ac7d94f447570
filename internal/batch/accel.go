package batch

import (
	"context"
	"strings"

	"lyricmux/internal/services/ffmpeg"
)

// AccelDecision records how hardware acceleration was negotiated for a run.
// Enabled is true only when acceleration was both requested and supported;
// Detail explains the outcome either way so a downgrade is visible in logs
// and history instead of silently flipping a flag.
type AccelDecision struct {
	Requested bool
	Supported bool
	Enabled   bool
	Detail    string
}

// NegotiateAccel probes the encoder listing once per batch and decides
// whether plans may assume hardware acceleration. A probe failure means
// unsupported, never an error; muxing works the same either way, the
// accelerated variants just copy fewer streams.
func NegotiateAccel(ctx context.Context, client ffmpeg.Client, requested bool) AccelDecision {
	decision := AccelDecision{Requested: requested}
	if !requested {
		decision.Detail = "not requested"
		return decision
	}

	listing, err := client.Encoders(ctx)
	if err != nil {
		decision.Detail = "encoder probe failed: " + err.Error()
		return decision
	}
	if !strings.Contains(strings.ToLower(listing), "nvenc") {
		decision.Detail = "no nvenc encoder found"
		return decision
	}

	decision.Supported = true
	decision.Enabled = true
	decision.Detail = "nvenc available"
	return decision
}
