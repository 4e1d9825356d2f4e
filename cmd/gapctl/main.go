// Command gapctl drives a Bluetooth controller through the gap host stack.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/adapter"
	"github.com/rigado/gap/config"
	"github.com/urfave/cli"
)

var (
	flgConfig   = cli.StringFlag{Name: "config, c", Usage: "YAML configuration file"}
	flgDevice   = cli.IntFlag{Name: "device", Value: -2, Usage: "hci index, overrides the configured transport"}
	flgVerbose  = cli.BoolFlag{Name: "verbose, v", Usage: "debug logging"}
	flgDuration = cli.DurationFlag{Name: "duration, d", Value: 10 * time.Second, Usage: "how long to run, 0 for indefinitely"}
	flgAddr     = cli.StringFlag{Name: "addr, a", Usage: "address of the remote device"}
	flgRandom   = cli.BoolFlag{Name: "random", Usage: "the address is an LE random address"}
	flgBrEdr    = cli.BoolFlag{Name: "bredr", Usage: "use BR/EDR instead of LE"}
)

var (
	cfg *config.Config
	dev *adapter.Adapter
)

func main() {
	app := cli.NewApp()

	app.Name = "gapctl"
	app.Usage = "Bluetooth GAP host for HCI controllers"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{flgConfig, flgDevice, flgVerbose}

	app.Commands = []cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "Discover LE peripherals",
			Action:  scan,
			Flags: []cli.Flag{
				flgDuration,
				cli.BoolFlag{Name: "passive", Usage: "do not request scan responses"},
				cli.StringFlag{Name: "name, n", Usage: "only peers whose name contains this"},
				cli.StringSliceFlag{Name: "service, s", Usage: "only peers advertising this service"},
				cli.IntFlag{Name: "rssi", Value: -127, Usage: "minimum RSSI"},
				cli.BoolFlag{Name: "connectable", Usage: "only connectable peers"},
			},
		},
		{
			Name:    "inquiry",
			Aliases: []string{"i"},
			Usage:   "Discover BR/EDR devices",
			Action:  inquiry,
			Flags:   []cli.Flag{flgDuration},
		},
		{
			Name:   "connect",
			Usage:  "Connect to a device and hold the link",
			Action: connect,
			Flags:  []cli.Flag{flgAddr, flgRandom, flgBrEdr, flgDuration},
		},
		{
			Name:   "pair",
			Usage:  "Connect to a device and pair with it",
			Action: pair,
			Flags: []cli.Flag{
				flgAddr, flgRandom, flgBrEdr,
				cli.StringFlag{Name: "level, l", Value: "encrypted", Usage: "encrypted, authenticated or secure"},
				cli.DurationFlag{Name: "timeout, t", Value: 60 * time.Second, Usage: "give up after"},
			},
		},
		{
			Name:   "discoverable",
			Usage:  "Make the adapter discoverable and connectable over BR/EDR",
			Action: discoverable,
			Flags:  []cli.Flag{flgDuration},
		},
		{
			Name:  "bonds",
			Usage: "List or forget stored bonds",
			Subcommands: []cli.Command{
				{
					Name:   "list",
					Usage:  "List bonded peers",
					Action: listBonds,
				},
				{
					Name:      "forget",
					Usage:     "Remove a bonded peer",
					ArgsUsage: "<peer id>",
					Action:    forgetBond,
				},
			},
			Action: listBonds,
		},
	}

	app.Before = setup
	app.After = teardown
	if err := app.Run(os.Args); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	// help and version need no controller
	if c.NArg() == 0 || c.Args().First() == "help" || c.Args().First() == "h" {
		return nil
	}

	cfg = config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if id := c.Int("device"); id != -2 {
		cfg.Transport.Type = "socket"
		cfg.Transport.Device = id
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}

	l, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	logger := gap.NewLogger(l)
	gap.SetLogger(logger)

	t, err := cfg.Open()
	if err != nil {
		return errors.Wrap(err, "can't open transport")
	}

	opts := append(cfg.Options(logger), gap.OptErrorHandler(func(err error) {
		printError(errors.Wrap(err, "transport"))
		os.Exit(1)
	}))
	dev, err = adapter.New(t, opts...)
	if err != nil {
		return errors.Wrap(err, "can't create adapter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dev.Init(ctx); err != nil {
		return errors.Wrap(err, "can't initialize controller")
	}
	printInfo("controller %v", dev.Address())
	return nil
}

func teardown(c *cli.Context) error {
	if dev == nil {
		return nil
	}
	return dev.Close()
}

// withSigHandler cancels ctx on SIGINT or SIGTERM.
func withSigHandler(ctx context.Context, cancel func()) context.Context {
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		select {
		case <-ch:
			fmt.Println()
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}

// runContext is bounded by d, or only by signals when d is 0.
func runContext(d time.Duration) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if d > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), d)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	return withSigHandler(ctx, cancel), cancel
}

func chkErr(err error) error {
	switch errors.Cause(err) {
	case nil:
	case context.DeadlineExceeded:
		printInfo("done")
	case context.Canceled:
		printInfo("canceled")
	default:
		return err
	}
	return nil
}
