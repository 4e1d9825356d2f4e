package bredr

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
)

const (
	scanInquiry = hci.ScanEnableInquiry
	scanPage    = hci.ScanEnablePage
)

// updateScanEnable sets or clears bits in the controller's Scan_Enable. The
// current value is read first and the write is skipped when nothing changes.
func updateScanEnable(ctrl hci.Controller, bits uint8, on bool, cb func(error)) {
	ctrl.SendCommand(&cmd.ReadScanEnable{}, func(e hci.Event) {
		if err := e.Err(); err != nil {
			cb(errors.Wrap(err, "read scan enable"))
			return
		}
		rp := cmd.ReadScanEnableRP{}
		if err := rp.Unmarshal(e.ReturnParameters()); err != nil {
			cb(errors.Wrap(err, "read scan enable"))
			return
		}

		want := rp.ScanEnable &^ bits
		if on {
			want |= bits
		}
		if want == rp.ScanEnable {
			cb(nil)
			return
		}
		ctrl.SendCommand(&cmd.WriteScanEnable{ScanEnable: want}, func(e hci.Event) {
			cb(errors.Wrap(e.Err(), "write scan enable"))
		}, hci.CommandCompleteEvent)
	}, hci.CommandCompleteEvent)
}
