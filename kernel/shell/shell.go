// Package shell implements the kernel's interactive line-editing REPL: a
// prompt loop that reads keystrokes from the keyboard driver and evaluates
// arithmetic expressions via package calc.
package shell

import (
	"github.com/mkaput/kernel/kernel/driver/keyboard"
	"github.com/mkaput/kernel/kernel/hal"
	"github.com/mkaput/kernel/kernel/kfmt"
	"github.com/mkaput/kernel/kernel/shell/calc"
)

const lineBufSize = 256

const banner = "kernel calculator shell\ntype an arithmetic expression, e.g. (2+3)*4\n"

// Start prints the banner and loops forever, reading one expression per
// line and printing its result. It never returns.
func Start() {
	kfmt.Printf(banner)

	var buf [lineBufSize]byte
	for {
		kfmt.Printf("> ")
		line := readLine(buf[:], keyboard.Wait, hal.ActiveTerminal.WriteByte)
		if len(line) == 0 {
			continue
		}

		result, err := calc.Eval(line)
		if err != nil {
			kfmt.Printf("error: %s\n", err.Error())
			continue
		}
		kfmt.Printf("%d\n", result)
	}
}

// readLine blocks on read once per character until a newline is entered,
// echoing via echo each character it accepts (characters past the buffer's
// capacity and backspaces on an empty line are dropped without echo), and
// returns the line with the trailing newline stripped. read and echo are parameterized so tests can drive the
// loop without a real keyboard or terminal.
func readLine(buf []byte, read func() byte, echo func(byte) error) []byte {
	n := 0
	for {
		ch := read()

		switch ch {
		case '\n':
			echo(ch)
			return buf[:n]
		case '\b':
			if n > 0 {
				n--
				echo(ch)
			}
		default:
			if n < len(buf) {
				buf[n] = ch
				n++
				echo(ch)
			}
		}
	}
}
