package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	. "github.com/ZenLiuCN/asmloader"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const banner = "asmloader: raw machine code loader"

const usage = `usage: asml <file.bin>
note : use nasm to compile .asm to .bin
     : e.g. nasm file.asm -o file.bin
     :      asml file.bin
     : or   asml asm file.asm`

const warning = `warning: are you sure "%s" is the file you want to execute?
       : it seems to be a source assembly file, while asml
       : needs the compiled version (with proper machine code)
       : (if your app will crash this is most likely the cause)
`

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failure %s\n", err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "asml"
	app.Usage = "load raw machine code and jump to it"
	app.Description = "asml loads a headerless binary behind a stub which passes a table of exit, putchar, getchar, printf and scanf in EBX/RBX"
	app.ArgsUsage = "<file.bin>"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log every loading step"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not print the banner and the load address"},
		&cli.BoolFlag{Name: "dump", Usage: "hex dump the prepared stub before executing"},
	}
	app.Before = setup
	app.Action = run
	app.Commands = []*cli.Command{
		{
			Name:      "asm",
			Action:    assemble,
			Usage:     "assemble a source file into a flat binary with nasm",
			ArgsUsage: "<file.asm>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, default replaces the extension by .bin"},
			},
		},
		{
			Name:      "dump",
			Action:    dump,
			Usage:     "load a binary without executing and hex dump the prepared stub",
			ArgsUsage: "<file.bin>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "arch", Aliases: []string{"a"}, Usage: "stub variant: x86, x64-win or x64-sysv, default the host. x86 needs a 32-bit host"},
			},
		},
	}
	return app
}

func setup(ctx *cli.Context) (err error) {
	if ctx.Bool("debug") {
		var l *zap.Logger
		if l, err = zap.NewDevelopment(); err != nil {
			return
		}
		SetLogger(l)
	}
	return
}

func run(ctx *cli.Context) (err error) {
	w := ctx.App.Writer
	quiet := ctx.Bool("quiet")
	if !quiet {
		_, _ = fmt.Fprintln(w, banner)
	}
	if ctx.NArg() != 1 {
		_, _ = fmt.Fprintln(w, usage)
		return cli.Exit("", 1)
	}
	file := ctx.Args().First()
	if LooksLikeSource(file) {
		_, _ = fmt.Fprintf(w, warning, file)
	}
	r, err := Load(file)
	if err != nil {
		return failed(w, err)
	}
	defer func() { _ = r.Release() }()
	if !quiet {
		_, _ = fmt.Fprintf(w, "Code loaded at %#x (%d bytes)\n", r.Payload(), r.PayloadSize())
	}
	if ctx.Bool("dump") {
		if err = DumpStub(w, r); err != nil {
			return
		}
	}
	status, err := r.Exec()
	if rerr := r.Release(); err == nil {
		err = rerr
	}
	if err != nil {
		return failed(w, err)
	}
	if status != 0 {
		return cli.Exit("", status)
	}
	return
}

// failed reports a load or execution error on stdout and exits with 2.
func failed(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "error: %s\n", err)
	return cli.Exit("", 2)
}

func assemble(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return fmt.Errorf("missing source file")
	}
	out, err := Assemble(ctx.Args().First(), ctx.String("out"))
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.App.Writer, "assembled %s\n", out)
	return
}

func dump(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return fmt.Errorf("missing binary file")
	}
	arch := HostArch()
	if a := ctx.String("arch"); a != "" {
		if arch, err = ParseArch(a); err != nil {
			return
		}
	}
	if arch == ArchX86 && strconv.IntSize != 32 {
		// the x86 stub embeds the table address in 32 bits
		return fmt.Errorf("%w: %s stub on a %d-bit host", ErrUnsupportedArch, arch, strconv.IntSize)
	}
	stub, err := SelectStub(arch)
	if err != nil {
		return
	}
	host, err := DefaultHostTable()
	if err != nil {
		// addresses are only printed, zero is as good as any
		host = NewHostTable(0, 0, 0, 0, 0)
	}
	l := &Loader{Stub: stub, Host: host, Allocator: MmapAllocator{}, Open: OpenFile}
	r, err := l.Load(ctx.Args().First())
	if err != nil {
		return
	}
	defer func() { _ = r.Release() }()
	w := ctx.App.Writer
	_, _ = fmt.Fprintf(w, "%s stub at %#x, payload at %#x (%d bytes)\n", stub.Name(), r.Base(), r.Payload(), r.PayloadSize())
	return DumpStub(w, r)
}
