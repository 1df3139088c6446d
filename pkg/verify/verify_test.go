package verify

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("<html>not an image</html>"), 0644))

	output := `tweet_num,tweet_type,post_link,image_name
0,original,https://twitter.com/a/status/1,good.png
1,original,https://twitter.com/b/status/2,broken.jpg
2,original,https://twitter.com/c/status/3,gone.jpg
3,original,https://twitter.com/d/status/4,
`

	result, err := NewChecker(dir, logger.NewTestLogger()).Check(context.Background(), strings.NewReader(output))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, []Missing{
		{PostLink: "https://twitter.com/b/status/2", ImageName: "broken.jpg", Reason: ReasonUndecodable},
		{PostLink: "https://twitter.com/c/status/3", ImageName: "gone.jpg", Reason: ReasonMissing},
	}, result.Missing)
}

func TestCheckRequiresColumns(t *testing.T) {
	_, err := NewChecker(t.TempDir(), nil).Check(context.Background(), strings.NewReader("tweet_num,post_link\n0,x\n"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeLoad))
}

func TestCheckFileMissing(t *testing.T) {
	_, err := NewChecker(t.TempDir(), nil).CheckFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, []Missing{{PostLink: "l", ImageName: "n", Reason: ReasonMissing}}))
	assert.Equal(t, "post_link,image_name,reason\nl,n,missing\n", buf.String())
}
