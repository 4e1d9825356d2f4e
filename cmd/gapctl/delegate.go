package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rigado/gap"
)

// consoleDelegate asks the user on stdin. Answers are posted back to the
// adapter's dispatcher.
type consoleDelegate struct {
	post func(func())
	in   *bufio.Reader
}

func newConsoleDelegate(post func(func())) *consoleDelegate {
	return &consoleDelegate{post: post, in: bufio.NewReader(os.Stdin)}
}

func (d *consoleDelegate) IOCapability() gap.IOCapability { return gap.IOKeyboardDisplay }

func (d *consoleDelegate) CompletePairing(id gap.PeerID, err error) {
	if err != nil {
		printInfo("pairing with %v failed: %v", id, err)
	}
}

func (d *consoleDelegate) ConfirmPairing(id gap.PeerID, confirm func(bool)) {
	d.ask(fmt.Sprintf("pair with %v? [y/N] ", id), func(s string) {
		confirm(strings.HasPrefix(strings.ToLower(s), "y"))
	})
}

func (d *consoleDelegate) DisplayPasskey(id gap.PeerID, passkey uint32, method gap.DisplayMethod, confirm func(bool)) {
	if method == gap.DisplayPeerEntry {
		promptText.Printf("enter %06d on %v\n", passkey, id)
		confirm(true)
		return
	}
	d.ask(fmt.Sprintf("does %v show %06d? [y/N] ", id, passkey), func(s string) {
		confirm(strings.HasPrefix(strings.ToLower(s), "y"))
	})
}

func (d *consoleDelegate) RequestPasskey(id gap.PeerID, respond func(int64)) {
	d.ask(fmt.Sprintf("passkey shown on %v: ", id), func(s string) {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil || v > 999999 {
			respond(-1)
			return
		}
		respond(int64(v))
	})
}

// ask reads a line without blocking the dispatcher.
func (d *consoleDelegate) ask(prompt string, answer func(string)) {
	promptText.Print(prompt)
	go func() {
		s, _ := d.in.ReadString('\n')
		s = strings.TrimSpace(s)
		d.post(func() { answer(s) })
	}()
}
