package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/daviszhen/flashsize/pkg/common"
	"github.com/daviszhen/flashsize/pkg/layout"
)

var ErrNoInput = errors.New("no more input")

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask shows label and waits until check accepts an answer. An empty answer
// takes def; with no default it is asked again.
func (p *Prompter) Ask(label, def string, check func(string) error) (string, error) {
	question := label
	if def != "" {
		question += " [default: " + def + "]"
	}
	question += ": "
	for {
		fmt.Fprint(p.out, question)
		answer, err := p.readLine()
		if err != nil {
			return "", fmt.Errorf("%s: %w", label, err)
		}
		if answer == "" {
			if def == "" {
				fmt.Fprintln(p.out, "No input provided and no default value. Please try again.")
				continue
			}
			answer = def
		}
		if check != nil {
			if err = check(answer); err != nil {
				fmt.Fprintf(p.out, "Invalid value: %v. Please try again.\n", err)
				continue
			}
		}
		return answer, nil
	}
}

func checkSize(s string) error {
	_, err := common.ParseSize(s)
	return err
}

func checkCount(s string) error {
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("%w: %q is not a non-negative integer", common.ErrInvalidFormat, s)
	}
	return nil
}

func checkRatio(s string) error {
	_, err := common.ParseRatio(s)
	return err
}

// AskParams walks through every calculator parameter. Later defaults follow
// earlier answers: the block size follows the flash type, the meta size the
// interface and the pSLC count the prototype.
func (p *Prompter) AskParams(catalog *layout.Catalog) (*layout.RawParams, error) {
	raw := &layout.RawParams{}
	var err error

	raw.Prototype, err = p.Ask("Please enter the prototype of the emulator (conzone or zns)",
		catalog.DefaultPrototype, nil)
	if err != nil {
		return nil, err
	}
	raw.MemmapStart, err = p.Ask("Please enter the start address of memmap (e.g., 82G)",
		catalog.MemmapStart.String(), checkSize)
	if err != nil {
		return nil, err
	}
	raw.FlashType, err = p.Ask("Please enter the flash type (e.g., TLC, QLC)",
		catalog.DefaultFlashType, nil)
	if err != nil {
		return nil, err
	}
	if _, ok := catalog.Flash(raw.FlashType); !ok {
		fmt.Fprintf(p.out, "Undefined flash type. Set flash_type == %s\n", catalog.DefaultFlashType)
		raw.FlashType = catalog.DefaultFlashType
	}
	raw.Interface, err = p.Ask("Please enter the interface type (e.g., block, zoned)",
		string(catalog.DefaultInterface), nil)
	if err != nil {
		return nil, err
	}
	switch layout.Interface(strings.ToLower(raw.Interface)) {
	case layout.InterfaceZoned, layout.InterfaceBlock:
		raw.Interface = strings.ToLower(raw.Interface)
	default:
		fmt.Fprintf(p.out, "Undefined interface type. Set interface_type == %s\n", catalog.DefaultInterface)
		raw.Interface = string(catalog.DefaultInterface)
	}
	raw.BlockSize, err = p.Ask("Please enter block size (e.g., 2M, 32M)",
		catalog.DefaultBlockSize(raw.FlashType).String(), checkSize)
	if err != nil {
		return nil, err
	}
	raw.Dies, err = p.Ask("Please enter the number of dies per superblock",
		strconv.FormatUint(catalog.Dies, 10), checkCount)
	if err != nil {
		return nil, err
	}
	raw.PSLCSuperBlocks, err = p.Ask("Please enter the number of pSLC superblocks for data area",
		strconv.FormatUint(catalog.DefaultPSLCSuperBlocks(raw.Prototype), 10), checkCount)
	if err != nil {
		return nil, err
	}
	raw.DataSize, err = p.Ask("Please enter the size of data namespace (e.g., 4G)",
		catalog.DataSize.String(), checkSize)
	if err != nil {
		return nil, err
	}
	raw.MetaSize, err = p.Ask("Please enter the size of meta namespace (e.g., 256M, 40M)",
		catalog.DefaultMetaSize(raw.Interface).String(), checkSize)
	if err != nil {
		return nil, err
	}
	raw.MetaOP, err = p.Ask("Enter the OP ratio for meta area",
		catalog.MetaOP.String(), checkRatio)
	if err != nil {
		return nil, err
	}
	if layout.Interface(raw.Interface) == layout.InterfaceBlock {
		fmt.Fprintf(p.out, "the OP ratio for data area is %s\n", raw.MetaOP)
	}
	return raw, nil
}
