// Command qemurun boots a kernel image under QEMU with the host terminal
// wired up as the kernel's serial console: local input is forwarded in raw
// mode so the kernel's keyboard driver sees every keystroke unmediated by
// the host's line discipline, and QEMU's serial output is copied straight
// to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"golang.org/x/term"
)

var errNoTTY = errors.New("qemurun: stdin is not a terminal")

func main() {
	var (
		image   = flag.String("image", "", "path to the bootable kernel image")
		memMiB  = flag.Int("mem", 256, "guest memory size, in MiB")
		extra   = flag.String("qemu-args", "", "extra arguments appended verbatim to the qemu-system-x86_64 invocation")
		display = flag.Bool("display", false, "show the QEMU graphical window instead of running headless")
	)
	flag.Parse()

	if err := run(*image, *memMiB, *extra, *display); err != nil {
		fmt.Fprintf(os.Stderr, "qemurun: %s\n", err)
		os.Exit(1)
	}
}

func run(image string, memMiB int, extraArgs string, display bool) error {
	if image == "" {
		return errors.New("qemurun: -image is required")
	}

	args := []string{
		"-drive", "format=raw,file=" + image,
		"-m", fmt.Sprintf("%dM", memMiB),
		"-serial", "stdio",
		"-no-reboot",
		"-no-shutdown",
	}
	if !display {
		args = append(args, "-display", "none")
	}
	if extraArgs != "" {
		args = append(args, splitArgs(extraArgs)...)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("qemurun: entering raw mode: %w", err)
	}
	defer term.Restore(fd, saved)

	cmd := exec.Command("qemu-system-x86_64", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("qemurun: starting qemu: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		term.Restore(fd, saved)
		_ = cmd.Process.Kill()
	}()

	return cmd.Wait()
}

func splitArgs(s string) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
