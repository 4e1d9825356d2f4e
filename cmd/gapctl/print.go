package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rigado/gap/peer"
)

var (
	infoColor  = color.New(color.FgCyan)
	errColor   = color.New(color.FgRed)
	peerColor  = color.New(color.FgGreen)
	bondColor  = color.New(color.FgYellow)
	promptText = color.New(color.FgMagenta, color.Bold)
)

func printInfo(format string, a ...interface{}) {
	infoColor.Printf(format+"\n", a...)
}

func printError(err error) {
	errColor.Fprintf(os.Stderr, "error: %v\n", err)
}

func printLEPeer(p *peer.Peer) {
	name, _ := p.Name()
	var extra []string
	if ad := p.LE().AdvertisingData(); ad != nil {
		for _, u := range ad.Services {
			extra = append(extra, u.String())
		}
		if id, ok := ad.ManufacturerID(); ok {
			extra = append(extra, fmt.Sprintf("mfg:%04x", id))
		}
	}
	conn := ""
	if p.Connectable() {
		conn = "C"
	}
	peerColor.Printf("%v %-32s %1s %4d %-24q %s\n", p.ID(), p.Address(), conn, p.RSSI(), name, strings.Join(extra, " "))
}

func printBrEdrPeer(p *peer.Peer) {
	name, _ := p.Name()
	cod := ""
	if v, ok := p.BrEdr().ClassOfDevice(); ok {
		cod = fmt.Sprintf("%06x", v)
	}
	peerColor.Printf("%v %-32s %6s %4d %q\n", p.ID(), p.Address(), cod, p.RSSI(), name)
}

func printBond(b peer.BondingData) {
	var kinds []string
	if b.LE != nil {
		kinds = append(kinds, "le")
	}
	if b.BrEdrLinkKey != nil {
		kinds = append(kinds, "br/edr")
	}
	bondColor.Printf("%v %-32s %-10s %q\n", b.ID, b.Address, strings.Join(kinds, ","), b.Name)
}
