// Package ffmpeg wraps the external ffmpeg binary behind a small client
// interface so the batch pipeline can check availability, probe encoder
// capabilities, and execute mux plans with captured output.
package ffmpeg
