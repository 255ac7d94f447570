package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestNewCLIDefaultBinary(t *testing.T) {
	cli := NewCLI(WithBinary(""))
	if cli.Binary() != "ffmpeg" {
		t.Fatalf("expected default binary, got %q", cli.Binary())
	}
}

func TestCLIVersionReturnsFirstLine(t *testing.T) {
	setHelperCommand(t, "version")

	cli := NewCLI()
	line, err := cli.Version(context.Background())
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if line != "ffmpeg version 6.1.1" {
		t.Fatalf("expected first banner line, got %q", line)
	}
}

func TestCLIVersionMissingBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/nonexistent/ffmpeg"))
	_, err := cli.Version(context.Background())
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

func TestCLIEncodersListsHardwareEncoders(t *testing.T) {
	setHelperCommand(t, "encoders")

	cli := NewCLI()
	out, err := cli.Encoders(context.Background())
	if err != nil {
		t.Fatalf("Encoders returned error: %v", err)
	}
	if !strings.Contains(strings.ToLower(out), "nvenc") {
		t.Fatalf("expected encoder listing to mention nvenc, got %q", out)
	}
}

func TestCLIRunCapturesStreams(t *testing.T) {
	setHelperCommand(t, "run")

	cli := NewCLI()
	result, err := cli.Run(context.Background(), []string{"-y", "-i", "in.mp3", "out.mp3"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(result.Stdout, "muxing done") {
		t.Fatalf("expected stdout capture, got %q", result.Stdout)
	}
	if !strings.Contains(result.Stderr, "size=") {
		t.Fatalf("expected stderr capture, got %q", result.Stderr)
	}
}

func TestCLIRunFailureKeepsStderr(t *testing.T) {
	setHelperCommand(t, "fail")

	cli := NewCLI()
	result, err := cli.Run(context.Background(), []string{"-y", "-i", "in.mp3", "out.mp3"})
	if err == nil {
		t.Fatal("expected run failure error")
	}
	if !strings.Contains(result.Stderr, "invalid argument") {
		t.Fatalf("expected stderr retained on failure, got %q", result.Stderr)
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "version":
		fmt.Println("ffmpeg version 6.1.1")
		fmt.Println("built with gcc 13")
		os.Exit(0)
	case "encoders":
		fmt.Println("Encoders:")
		fmt.Println(" V....D h264_nvenc           NVIDIA NVENC H.264 encoder")
		os.Exit(0)
	case "run":
		fmt.Println("muxing done")
		fmt.Fprintln(os.Stderr, "size=    1024KiB time=00:03:00.00")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "out.mp3: invalid argument")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
