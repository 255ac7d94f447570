package batch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lyricmux/internal/batch"
)

func TestNegotiateAccelNotRequested(t *testing.T) {
	decision := batch.NegotiateAccel(context.Background(), &fakeClient{encoders: "h264_nvenc"}, false)
	if decision.Requested || decision.Supported || decision.Enabled {
		t.Fatalf("decision = %+v, want all false", decision)
	}
	if decision.Detail != "not requested" {
		t.Errorf("detail = %q", decision.Detail)
	}
}

func TestNegotiateAccelSupported(t *testing.T) {
	client := &fakeClient{encoders: " V....D h264_nvenc  NVIDIA NVENC H.264 encoder"}
	decision := batch.NegotiateAccel(context.Background(), client, true)
	if !decision.Requested || !decision.Supported || !decision.Enabled {
		t.Fatalf("decision = %+v, want all true", decision)
	}
	if decision.Detail != "nvenc available" {
		t.Errorf("detail = %q", decision.Detail)
	}
}

func TestNegotiateAccelCaseInsensitive(t *testing.T) {
	client := &fakeClient{encoders: "HEVC_NVENC"}
	decision := batch.NegotiateAccel(context.Background(), client, true)
	if !decision.Enabled {
		t.Fatalf("decision = %+v, want enabled for uppercase listing", decision)
	}
}

func TestNegotiateAccelNoEncoder(t *testing.T) {
	client := &fakeClient{encoders: " A....D libmp3lame  MP3 (MPEG audio layer 3)"}
	decision := batch.NegotiateAccel(context.Background(), client, true)
	if !decision.Requested || decision.Supported || decision.Enabled {
		t.Fatalf("decision = %+v, want requested but unsupported", decision)
	}
	if decision.Detail != "no nvenc encoder found" {
		t.Errorf("detail = %q", decision.Detail)
	}
}

func TestNegotiateAccelProbeFailureMeansUnsupported(t *testing.T) {
	client := &fakeClient{encodersErr: errors.New("exit status 1")}
	decision := batch.NegotiateAccel(context.Background(), client, true)
	if decision.Supported || decision.Enabled {
		t.Fatalf("decision = %+v, want unsupported on probe failure", decision)
	}
	if !strings.HasPrefix(decision.Detail, "encoder probe failed") {
		t.Errorf("detail = %q, want probe-failure prefix", decision.Detail)
	}
}
