package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tracksift/internal/logging"
	"tracksift/internal/services"
)

type recordingReporter struct {
	started  string
	total    int64
	updates  []Snapshot
	finished bool
	err      error
}

func (r *recordingReporter) Start(path string, total int64) { r.started, r.total = path, total }
func (r *recordingReporter) Update(s Snapshot) { r.updates = append(r.updates, s) }
func (r *recordingReporter) Finish(err error) { r.finished, r.err = true, err }

func TestTranscodeStreamsProgress(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ep01.mkv")
	outDir := filepath.Join(dir, "_encoded")

	var gotArgs []string
	runner := func(_ context.Context, binary string, args []string, stderr io.Writer) error {
		if binary != "ffmpeg-test" {
			return fmt.Errorf("unexpected binary %s", binary)
		}
		if _, err := os.Stat(filepath.Join(outDir, LockFileName)); err != nil {
			return fmt.Errorf("expected output lock: %w", err)
		}
		gotArgs = args
		_, _ = io.WriteString(stderr, "Input #0, matroska\n")
		_, _ = io.WriteString(stderr, "frame=  10 fps=5 speed=0.5x\r")
		_, _ = io.WriteString(stderr, "frame=  20 fps=6 speed=0.6x\r")
		return nil
	}
	transcoder := NewTranscoder("ffmpeg-test", nil, WithCommandRunner(runner))
	reporter := &recordingReporter{}
	result, err := transcoder.Transcode(context.Background(), Job{
		Input:       input,
		OutputDir:   outDir,
		Selection:   sampleSelection(),
		TotalFrames: 100,
	}, reporter)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if result.Output != filepath.Join(outDir, "ep01.mkv") {
		t.Fatalf("unexpected output %q", result.Output)
	}
	if !strings.HasPrefix(result.Command, "ffmpeg-test -i ") {
		t.Fatalf("unexpected command %q", result.Command)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != result.Output {
		t.Fatalf("runner did not receive synthesized args: %q", gotArgs)
	}
	if reporter.started != input || reporter.total != 100 || !reporter.finished || reporter.err != nil {
		t.Fatalf("unexpected reporter state %+v", reporter)
	}
	if len(reporter.updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(reporter.updates))
	}
	if v, _ := result.Last.Float("frame"); v != 20 {
		t.Fatalf("expected latest snapshot frame 20, got %v", v)
	}
	if _, err := os.Stat(filepath.Join(outDir, LockFileName)); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, got %v", err)
	}
}

func TestTranscodeLogsFinalRate(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "encode.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	runner := func(_ context.Context, _ string, _ []string, stderr io.Writer) error {
		_, _ = io.WriteString(stderr, "frame=  20 fps=6 speed=0.6x\n")
		return nil
	}
	transcoder := NewTranscoder("ffmpeg", logger, WithCommandRunner(runner))
	if _, err := transcoder.Transcode(context.Background(), Job{
		Input:     filepath.Join(dir, "ep01.mkv"),
		OutputDir: filepath.Join(dir, "_encoded"),
		Selection: sampleSelection(),
	}, nil); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var completed string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.Contains(line, "transcode completed") {
			completed = line
		}
	}
	if !strings.Contains(completed, `"fps":6`) {
		t.Fatalf("expected numeric fps in %q", completed)
	}
	if strings.Contains(completed, `"speed"`) {
		t.Fatalf("non-numeric speed should be omitted: %q", completed)
	}
}

func TestTranscodeFailureCarriesStderrTail(t *testing.T) {
	dir := t.TempDir()
	runner := func(_ context.Context, _ string, _ []string, stderr io.Writer) error {
		_, _ = io.WriteString(stderr, "Unknown encoder 'hevc_amf'\n")
		return errors.New("exit status 1")
	}
	reporter := &recordingReporter{}
	_, err := NewTranscoder("ffmpeg", nil, WithCommandRunner(runner)).Transcode(context.Background(), Job{
		Input:     filepath.Join(dir, "ep02.mkv"),
		OutputDir: filepath.Join(dir, "_encoded"),
		Options:   Options{Video: VideoH265, Vendor: VendorAMD},
	}, reporter)
	var tErr *TranscodeError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(tErr.Error(), "Unknown encoder") || !strings.Contains(tErr.Error(), "ep02.mkv") {
		t.Fatalf("unexpected message %q", tErr.Error())
	}
	if !reporter.finished || reporter.err == nil {
		t.Fatal("reporter must observe the failure")
	}
}

func TestTranscodeOutputDirFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	called := false
	runner := func(context.Context, string, []string, io.Writer) error {
		called = true
		return nil
	}
	_, err := NewTranscoder("ffmpeg", nil, WithCommandRunner(runner)).Transcode(context.Background(), Job{
		Input:     filepath.Join(dir, "ep03.mkv"),
		OutputDir: filepath.Join(blocker, "_encoded"),
	}, nil)
	var tErr *TranscodeError
	if !errors.As(err, &tErr) || tErr.Path != filepath.Join(dir, "ep03.mkv") {
		t.Fatalf("expected TranscodeError for the file, got %v", err)
	}
	if called {
		t.Fatal("ffmpeg must not run when the output directory cannot be created")
	}
}

func TestTranscoderCommandPreview(t *testing.T) {
	cmd, err := NewTranscoder("", nil).Command(Job{Input: "/a/b.mkv", OutputDir: "/a/_encoded"})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd != `ffmpeg -i "/a/b.mkv" -map 0:v -c:v copy -map_chapters 0 -map 0:t? -y "/a/_encoded/b.mkv"` {
		t.Fatalf("unexpected command %q", cmd)
	}
}
