package workload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "tweetscraper/pkg/errors"
)

const sample = `post_type,post_link,image_name
original,https://twitter.com/alice/status/1,
retweet,https://twitter.com/bob/status/2,
original, https://twitter.com/carol/status/3 ,c.jpg
reply,https://twitter.com/dave/status/4,
quote,https://twitter.com/erin/status/5,
`

func TestRead(t *testing.T) {
	src, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 5, src.Len())
	all := src.Filter()
	require.Len(t, all, 5)
	assert.Equal(t, "https://twitter.com/carol/status/3", all[2].Link)
	assert.Equal(t, "c.jpg", all[2].ImageName)
	assert.Equal(t, KindReply, all[3].Kind)
}

func TestFilterReindexes(t *testing.T) {
	src, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	originals := src.Filter(KindOriginal)
	require.Len(t, originals, 2)
	assert.Equal(t, 0, originals[0].Index)
	assert.Equal(t, 1, originals[1].Index)
	assert.Equal(t, "https://twitter.com/carol/status/3", originals[1].Link)

	mixed := src.Filter(KindRetweet, KindQuote)
	require.Len(t, mixed, 2)
	assert.Equal(t, KindRetweet, mixed[0].Kind)
	assert.Equal(t, KindQuote, mixed[1].Kind)
	assert.Equal(t, 1, mixed[1].Index)

	assert.Empty(t, src.Filter(Kind("unknown")))
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing post_type", "kind,post_link\noriginal,x\n"},
		{"missing post_link", "post_type,url\noriginal,x\n"},
		{"short row", "post_link,post_type\nhttps://twitter.com/a/status/1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrorTypeLoad))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path())
	assert.Equal(t, 5, src.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeLoad))
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []Kind{KindOriginal, KindRetweet}, Kinds([]string{"original", " ", " retweet"}))
}
