package startup

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestValuesDefaults(t *testing.T) {
	values := NewValues(nil)

	assert.True(t, values.Bool("enable_previews", true))
	assert.Equal(t, "x", values.String("preview_ffmpeg_path", "x"))
	assert.Equal(t, []string{"a"}, values.Strings("enabledPreviewProviders", []string{"a"}))
	assert.Equal(t, 7, values.Int("preview_concurrency_all", 7))
}

func TestValuesFromSettings(t *testing.T) {
	v := viper.New()
	v.Set("enable_previews", "false")
	v.Set("preview_ffmpeg_path", " /usr/bin/ffmpeg ")
	v.Set("preview_concurrency_all", "3")
	v.Set("list", []string{`Preview\PNG`, " Preview\\TXT "})
	v.Set("csv", `Preview\PNG, \Preview\Movie,,`)
	v.Set("bad_int", "many")
	v.Set("bad_bool", "sometimes")
	v.Set("empty", "")

	values := NewValues(v)

	assert.False(t, values.Bool("enable_previews", true))
	assert.Equal(t, "/usr/bin/ffmpeg", values.String("preview_ffmpeg_path", ""))
	assert.Equal(t, 3, values.Int("preview_concurrency_all", 1))
	assert.Equal(t, []string{`Preview\PNG`, `Preview\TXT`}, values.Strings("list", nil))
	assert.Equal(t, []string{`Preview\PNG`, `\Preview\Movie`}, values.Strings("csv", nil))
	assert.Equal(t, 1, values.Int("bad_int", 1))
	assert.True(t, values.Bool("bad_bool", true))
	assert.Equal(t, "def", values.String("empty", "def"))
	assert.Equal(t, []string{"def"}, values.Strings("empty", []string{"def"}))
}

func TestValuesFromEnvironment(t *testing.T) {
	t.Setenv("ENABLEDPREVIEWPROVIDERS", `Preview\PNG,Preview\GIF`)
	t.Setenv("PREVIEW_CONCURRENCY_NEW", "4")

	v := viper.New()
	v.AutomaticEnv()
	values := NewValues(v)

	assert.Equal(t, []string{`Preview\PNG`, `Preview\GIF`}, values.Strings("enabledPreviewProviders", nil))
	assert.Equal(t, 4, values.Int("preview_concurrency_new", 1))
}

func TestValuesMemorySettings(t *testing.T) {
	t.Setenv("MEMORY_LIMIT", "2147483648")
	t.Setenv("MEMORY_RATIO", "0.6")
	t.Setenv("MEMORY_WATERMARK", "lots")

	v := viper.New()
	v.AutomaticEnv()
	values := NewValues(v)

	assert.Equal(t, int64(2147483648), values.Int64("memory_limit", 0))
	assert.InDelta(t, 0.6, values.Float64("memory_ratio", 0.75), 1e-9)
	assert.InDelta(t, 0.85, values.Float64("memory_watermark", 0.85), 1e-9)
	assert.Equal(t, int64(5), values.Int64("unset", 5))
}
