package capture

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-hub/pkg/interfaces"
	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegFrame = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
)

func TestAccepts(t *testing.T) {
	tests := []struct {
		mime string
		name string
		want bool
	}{
		{"image/png", "a.png", true},
		{"image/jpg", "a.jpg", true},
		{"image/jpeg; charset=binary", "a.jpg", true},
		{"image/gif", "a.gif", true},
		{"image/bmp", "a.bmp", true},
		{"image/webp", "a.webp", true},
		{"application/pdf", "doc.pdf", true},
		{"", "scan.PDF", true},
		{"application/octet-stream", "photo.webp", true},
		{"image/tiff", "a.tiff", false},
		{"text/plain", "notes.txt", false},
		{"text/plain", "notes.png", false},
		{"", "archive.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime+"_"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.mime, tt.name))
		})
	}
}

func buildForm(t *testing.T, files map[string][]byte, order []string, source string) *multipart.Form {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range order {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
		if strings.HasSuffix(name, ".png") {
			h.Set("Content-Type", "image/png")
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(files[name])
		require.NoError(t, err)
	}
	if source != "" {
		require.NoError(t, w.WriteField("source", source))
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form
}

func TestFromMultipart_FirstFileOnly(t *testing.T) {
	form := buildForm(t, map[string][]byte{
		"first.png":  pngBytes,
		"second.png": pngBytes,
	}, []string{"first.png", "second.png"}, "drop")

	file, err := FromMultipart(form, SourceFromForm(form))
	require.NoError(t, err)
	assert.Equal(t, "first.png", file.Name)
	assert.Equal(t, "image/png", file.MIMEType)
	assert.Equal(t, int64(len(pngBytes)), file.Size)
	assert.Equal(t, types.SourceDrop, file.Source)
}

func TestFromMultipart_SniffsGenericType(t *testing.T) {
	form := buildForm(t, map[string][]byte{"doc.pdf": []byte("%PDF-1.7\n")}, []string{"doc.pdf"}, "")

	file, err := FromMultipart(form, SourceFromForm(form))
	require.NoError(t, err)
	assert.Equal(t, types.PDFMimeType, file.MIMEType)
	assert.True(t, file.IsPDF())
	assert.Equal(t, types.SourcePicker, file.Source)
}

func TestFromMultipart_Errors(t *testing.T) {
	_, err := FromMultipart(&multipart.Form{}, types.SourcePicker)
	assert.True(t, utils.IsType(err, utils.ErrorTypeValidation))

	form := buildForm(t, map[string][]byte{"notes.txt": []byte("just text")}, []string{"notes.txt"}, "")
	_, err = FromMultipart(form, types.SourcePicker)
	assert.True(t, utils.IsType(err, utils.ErrorTypeUnsupported))
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()

	imgPath := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(imgPath, pngBytes, 0o644))
	file, err := FromPath(imgPath)
	require.NoError(t, err)
	assert.Equal(t, "scan.png", file.Name)
	assert.Equal(t, "image/png", file.MIMEType)
	assert.Equal(t, types.SourceCLI, file.Source)

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("hello"), 0o644))
	_, err = FromPath(txtPath)
	assert.True(t, utils.IsType(err, utils.ErrorTypeUnsupported))

	emptyPath := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	_, err = FromPath(emptyPath)
	assert.True(t, utils.IsType(err, utils.ErrorTypeValidation))

	_, err = FromPath(filepath.Join(dir, "missing.png"))
	assert.True(t, utils.IsType(err, utils.ErrorTypeNotFound))

	_, err = FromPath(dir)
	assert.True(t, utils.IsType(err, utils.ErrorTypeValidation))
}

// scriptedRunner answers ffmpeg invocations in order and records their args
type scriptedRunner struct {
	calls   [][]string
	answers []func() ([]byte, error)
}

func (r *scriptedRunner) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	i := len(r.calls) - 1
	if i >= len(r.answers) {
		i = len(r.answers) - 1
	}
	return r.answers[i]()
}

func frameOK() ([]byte, error) { return jpegFrame, nil }

func newTestCamera(r *scriptedRunner) *FFmpegCamera {
	c := NewFFmpegCamera("ffmpeg", nil)
	c.inputFormat = "v4l2"
	c.run = r.run
	return c
}

var hdConstraints = interfaces.CameraConstraints{Width: 1920, Height: 1080, Facing: "environment", Device: "/dev/video1"}

func TestFFmpegCamera_StartAndSnapshot(t *testing.T) {
	r := &scriptedRunner{answers: []func() ([]byte, error){frameOK}}
	cam := newTestCamera(r)

	stream, err := cam.Start(context.Background(), hdConstraints)
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2", "-video_size", "1920x1080",
		"-i", "/dev/video1",
		"-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-",
	}, r.calls[0])

	frame, err := stream.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jpegFrame, frame)

	require.NoError(t, stream.Close())
	_, err = stream.Snapshot(context.Background())
	assert.True(t, utils.IsType(err, utils.ErrorTypeCameraUnavailable))
	_, err = stream.Preview(context.Background())
	assert.True(t, utils.IsType(err, utils.ErrorTypeCameraUnavailable))
}

func TestFFmpegCamera_FallsBackToNativeSize(t *testing.T) {
	r := &scriptedRunner{answers: []func() ([]byte, error){
		func() ([]byte, error) { return nil, errors.New("Invalid argument") },
		frameOK,
	}}
	cam := newTestCamera(r)

	_, err := cam.Start(context.Background(), hdConstraints)
	require.NoError(t, err)
	require.Len(t, r.calls, 2)
	assert.Contains(t, r.calls[0], "-video_size")
	assert.NotContains(t, r.calls[1], "-video_size")
}

func TestFFmpegCamera_Unavailable(t *testing.T) {
	r := &scriptedRunner{answers: []func() ([]byte, error){
		func() ([]byte, error) { return nil, errors.New("No such file or directory") },
	}}
	_, err := newTestCamera(r).Start(context.Background(), hdConstraints)
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeCameraUnavailable))
	assert.Equal(t, utils.MsgCameraUnavailable, utils.UserMessage(err))

	_, err = NewFFmpegCamera("", nil).Start(context.Background(), hdConstraints)
	assert.True(t, utils.IsType(err, utils.ErrorTypeCameraUnavailable))
}

func TestFFmpegCamera_RejectsNonJPEGOutput(t *testing.T) {
	r := &scriptedRunner{answers: []func() ([]byte, error){
		func() ([]byte, error) { return []byte("garbage"), nil },
	}}
	_, err := newTestCamera(r).Start(context.Background(), hdConstraints)
	assert.True(t, utils.IsType(err, utils.ErrorTypeCameraUnavailable))
}

func TestFFmpegCamera_PreviewReusesLastFrame(t *testing.T) {
	r := &scriptedRunner{answers: []func() ([]byte, error){
		frameOK,
		func() ([]byte, error) { return nil, errors.New("device busy") },
	}}
	stream, err := newTestCamera(r).Start(context.Background(), hdConstraints)
	require.NoError(t, err)

	frame, err := stream.Preview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jpegFrame, frame)

	_, err = stream.Snapshot(context.Background())
	assert.True(t, utils.IsType(err, utils.ErrorTypeCameraUnavailable))
}
