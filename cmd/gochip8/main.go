// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/emulator"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/lassandro/gochip8/pkg/random"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

const usage = "gochip8 [options] filename"

const statsviewAddress = "localhost:12600"

// countFlag counts repeated boolean flags, -v -v
type countFlag int

func (count *countFlag) String() string {
	return strconv.Itoa(int(*count))
}

func (count *countFlag) Set(s string) error {
	if s == "true" {
		*count++
		return nil
	}

	value, err := strconv.Atoi(s)
	if err != nil {
		return err
	}

	*count = countFlag(value)
	return nil
}

func (count *countFlag) IsBoolFlag() bool {
	return true
}

var helpvar bool
var versionvar bool
var configvar string
var frontendvar string
var scalevar int
var ipsvar int
var seedvar int64
var tracevar bool
var breakvar string
var watchvar string
var stepvar bool
var wavvar string
var mutevar bool
var statsvar bool
var memvizvar string
var logvar string
var verbosity countFlag

func init() {
	// SDL must be driven from the main thread
	runtime.LockOSThread()
}

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&versionvar, "version", false, "Displays the version and exits")
	flag.StringVar(&configvar, "config", config.FILENAME, "Configuration file")
	flag.StringVar(&frontendvar, "frontend", "", "Frontend to run in, sdl or term")
	flag.IntVar(&scalevar, "scale", 0, "Window pixels per display pixel")
	flag.IntVar(&ipsvar, "ips", 0, "Instructions executed per second")
	flag.Int64Var(&seedvar, "seed", 0, "Random seed, 0 seeds from the clock")
	flag.BoolVar(&tracevar, "trace", false, "Logs every executed instruction")
	flag.StringVar(&breakvar, "break", "", "Pauses at the given addresses, comma separated")
	flag.StringVar(&watchvar, "watch", "", "Logs accesses to addr[:r|w|rw], comma separated")
	flag.BoolVar(&stepvar, "step", false, "Pauses after every instruction, space resumes")
	flag.StringVar(&wavvar, "wav", "", "Records the beeper to a WAV file")
	flag.BoolVar(&mutevar, "mute", false, "Disables live audio")
	flag.BoolVar(&statsvar, "statsview", false, "Serves runtime statistics at "+statsviewAddress)
	flag.StringVar(&memvizvar, "memviz", "", "Writes a graphviz dump of the machine state on exit")
	flag.StringVar(&logvar, "log", "", "Writes log messages to a file")
	flag.Var(&verbosity, "v", "Raises log verbosity, repeatable")
	flag.Parse()
}

func printBanner() {
	fmt.Printf("gochip8 %s\n", buildinfo.Version(version, commit, date))
}

// loadConfig reads the configuration file and applies any flags that were
// given explicitly on the command line.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if explicit["config"] {
		cfg, err = config.Load(configvar)
	} else {
		cfg, err = config.LoadOptional(configvar)
	}

	if err != nil {
		return nil, err
	}

	if explicit["frontend"] {
		cfg.Frontend = frontendvar
	}

	if explicit["scale"] {
		cfg.Scale = scalevar
	}

	if explicit["ips"] {
		cfg.InstructionsPerSecond = ipsvar
	}

	if explicit["seed"] {
		cfg.Seed = seedvar
	}

	if explicit["wav"] {
		cfg.Audio.Wav = wavvar
	}

	return cfg, cfg.Validate()
}

func newDebugger() (*debugger.Debugger, error) {
	if !tracevar && !stepvar && breakvar == "" && watchvar == "" {
		return nil, nil
	}

	dbg := debugger.New()
	dbg.Trace = tracevar
	dbg.Break = stepvar

	if breakvar != "" {
		for _, field := range strings.Split(breakvar, ",") {
			addr, err := encoding.DecodeAddress(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("break %q: %w", field, err)
			}

			dbg.AddBreakpoint(addr)
		}
	}

	if watchvar != "" {
		for _, field := range strings.Split(watchvar, ",") {
			watch, err := debugger.ParseWatchpoint(field)
			if err != nil {
				return nil, err
			}

			if dbg.AddWatchpoint(watch.Addr, watch.Type) {
				commonlog.GetLogger("gochip8").Infof(
					"watching %#03x (%s)", watch.Addr, watch.Type,
				)
			}
		}
	}

	return dbg, nil
}

func dumpState(path string, mc *machine.Machine) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	memviz.Map(file, &mc.State)
	return nil
}

func gochip8() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	if versionvar {
		printBanner()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	// The trace is written at debug level
	level := int(verbosity)
	if tracevar && level < 2 {
		level = 2
	}

	if logvar != "" {
		commonlog.Configure(level, &logvar)
	} else {
		commonlog.Configure(level, nil)
	}

	logger := commonlog.GetLogger("gochip8")

	cfg, err := loadConfig()

	if err != nil {
		log.Println(err)
		return 1
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	defer file.Close()

	rnd := random.NewRandom()
	if cfg.Seed != 0 {
		rnd = random.NewSeeded(cfg.Seed)
	}

	opts := []machine.Option{machine.WithRandom(rnd)}

	dbg, err := newDebugger()

	if err != nil {
		log.Println(err)
		return 1
	}

	if dbg != nil {
		opts = append(opts, machine.WithDebugger(dbg))
	}

	mc := machine.New(opts...)

	if err := mc.LoadBin(file); err != nil {
		log.Println(err)
		return 1
	}

	host, err := openHost(cfg, filepath.Base(args[0]))

	if err != nil {
		log.Println(err)
		return 1
	}

	defer host.Close()

	if statsvar {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(statsviewAddress))
			statsview.New().Start()
		}()

		logger.Noticef("stats server available at %s/debug/statsview", statsviewAddress)
	}

	logger.Infof("loaded %s, seed %d", args[0], rnd.Seed())

	emu := emulator.New(mc, host.Display, host.Input, host.Audio...)
	emu.InstructionsPerFrame = cfg.InstructionsPerFrame()
	emu.FramesPerSecond = cfg.FramesPerSecond

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)

	if memvizvar != "" {
		if err := dumpState(memvizvar, mc); err != nil {
			log.Println(err)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(gochip8())
}
