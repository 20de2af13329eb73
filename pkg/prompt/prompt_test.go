package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/flashsize/pkg/layout"
)

func TestAsk(t *testing.T) {
	t.Run("default on empty line", func(t *testing.T) {
		out := &strings.Builder{}
		p := NewPrompter(strings.NewReader("\n"), out)
		ans, err := p.Ask("block size", "24M", checkSize)
		require.NoError(t, err)
		assert.Equal(t, "24M", ans)
		assert.Equal(t, "block size [default: 24M]: ", out.String())
	})

	t.Run("retry until valid", func(t *testing.T) {
		out := &strings.Builder{}
		p := NewPrompter(strings.NewReader("24X\n-1\n32m\n"), out)
		ans, err := p.Ask("block size", "24M", checkSize)
		require.NoError(t, err)
		assert.Equal(t, "32m", ans)
		assert.Equal(t, 2, strings.Count(out.String(), "Please try again."))
	})

	t.Run("no default", func(t *testing.T) {
		out := &strings.Builder{}
		p := NewPrompter(strings.NewReader("\n  7 \n"), out)
		ans, err := p.Ask("dies", "", checkCount)
		require.NoError(t, err)
		assert.Equal(t, "7", ans)
		assert.Contains(t, out.String(), "No input provided")
	})

	t.Run("last line without newline", func(t *testing.T) {
		p := NewPrompter(strings.NewReader("QLC"), &strings.Builder{})
		ans, err := p.Ask("flash type", "TLC", nil)
		require.NoError(t, err)
		assert.Equal(t, "QLC", ans)
	})

	t.Run("eof", func(t *testing.T) {
		p := NewPrompter(strings.NewReader("bad\n"), &strings.Builder{})
		_, err := p.Ask("op ratio", "0.07", checkRatio)
		assert.ErrorIs(t, err, ErrNoInput)
	})
}

func TestAskParamsDefaults(t *testing.T) {
	catalog := layout.DefaultCatalog()
	out := &strings.Builder{}
	p := NewPrompter(strings.NewReader(strings.Repeat("\n", 10)), out)
	raw, err := p.AskParams(catalog)
	require.NoError(t, err)
	assert.Equal(t, layout.RawParams{
		Prototype:       "conzone",
		MemmapStart:     "82G",
		FlashType:       "TLC",
		Interface:       "zoned",
		BlockSize:       "24M",
		Dies:            "4",
		PSLCSuperBlocks: "28",
		DataSize:        "4G",
		MetaSize:        "256M",
		MetaOP:          "0.07",
	}, *raw)

	plan, err := catalog.Plan(*raw)
	require.NoError(t, err)
	assert.Equal(t, "7657M", plan.ReservedSize.String())
}

func TestAskParamsFollowsAnswers(t *testing.T) {
	catalog := layout.DefaultCatalog()
	out := &strings.Builder{}
	answers := []string{
		"zns",   // prototype
		"",      // memmap start
		"qlc",   // flash type
		"Block", // interface
		"",      // block size follows QLC
		"",      // dies
		"",      // pSLC follows zns
		"",      // data size
		"",      // meta size follows block
		"0.1",   // op ratio
	}
	p := NewPrompter(strings.NewReader(strings.Join(answers, "\n")+"\n"), out)
	raw, err := p.AskParams(catalog)
	require.NoError(t, err)
	assert.Equal(t, "zns", raw.Prototype)
	assert.Equal(t, "qlc", raw.FlashType)
	assert.Equal(t, "block", raw.Interface)
	assert.Equal(t, "32M", raw.BlockSize)
	assert.Equal(t, "0", raw.PSLCSuperBlocks)
	assert.Equal(t, "40M", raw.MetaSize)
	assert.Equal(t, "0.1", raw.MetaOP)
	assert.Contains(t, out.String(), "the OP ratio for data area is 0.1")
}

func TestAskParamsFallbacks(t *testing.T) {
	catalog := layout.DefaultCatalog()
	out := &strings.Builder{}
	answers := []string{"", "", "SLC", "nvme", "", "", "", "", "", ""}
	p := NewPrompter(strings.NewReader(strings.Join(answers, "\n")+"\n"), out)
	raw, err := p.AskParams(catalog)
	require.NoError(t, err)
	assert.Equal(t, "TLC", raw.FlashType)
	assert.Equal(t, "zoned", raw.Interface)
	assert.Contains(t, out.String(), "Undefined flash type")
	assert.Contains(t, out.String(), "Undefined interface type")

	p = NewPrompter(strings.NewReader("conzone\n82G\n"), &strings.Builder{})
	_, err = p.AskParams(catalog)
	assert.ErrorIs(t, err, ErrNoInput)
}
