package main

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/ZenLiuCN/asmloader"
	"github.com/ZenLiuCN/fn"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// outputs maps each variant to its generated file and variable.
var outputs = map[Arch][2]string{
	ArchX86:     {"stub_x86_32.go", "stubX86_32"},
	ArchX64Win:  {"stub_x86_64_mswin.go", "stubX86_64MSWin"},
	ArchX64SysV: {"stub_x86_64_sysv.go", "stubX86_64SysV"},
}

func main() {
	app := cli.NewApp()
	app.Name = "stubgen"
	app.Usage = "stub template tool"
	app.Description = "stubgen assembles the stub sources into Go templates and checks the templates against the patcher"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}},
	}
	app.Before = func(ctx *cli.Context) (err error) {
		if ctx.Bool("debug") {
			var l *zap.Logger
			if l, err = zap.NewDevelopment(); err == nil {
				SetLogger(l)
			}
		}
		return
	}
	app.Commands = []*cli.Command{
		{
			Name:   "generate",
			Action: generate,
			Usage:  "assemble stubs/*.nasm with nasm and write the Go templates",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "dir", Value: "stubs", Usage: "directory of the nasm sources"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "directory of the generated files"},
				&cli.StringFlag{Name: "pkg", Aliases: []string{"k"}, Value: "asmloader", Usage: "package of the generated files"},
			},
		},
		{
			Name:   "verify",
			Action: verify,
			Usage:  "check every compiled in template for missing tags and unintended relocation matches",
		},
		{
			Name:   "inspect",
			Action: inspect,
			Usage:  "dump the layout of the stubs",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "arch", Aliases: []string{"a"}, Usage: "only this variant"},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failure %s\n", err)
		os.Exit(1)
	}
}

func generate(ctx *cli.Context) (err error) {
	tmp, err := os.MkdirTemp("", "stubgen")
	if err != nil {
		return
	}
	defer func() { _ = os.RemoveAll(tmp) }()
	for _, stub := range Stubs() {
		o := outputs[stub.Arch()]
		src := filepath.Join(ctx.String("dir"), stub.Name()+".nasm")
		var bin string
		if bin, err = Assemble(src, filepath.Join(tmp, stub.Name()+".bin")); err != nil {
			return fmt.Errorf("assemble %s: %w", src, err)
		}
		var data []byte
		if data, err = os.ReadFile(bin); err != nil {
			return
		}
		if len(data) > stub.Size() {
			return fmt.Errorf("%s: %d bytes exceeds stub size %d", src, len(data), stub.Size())
		}
		if err = write(filepath.Join(ctx.String("out"), o[0]), ctx.String("pkg"), o[1], filepath.ToSlash(src), data); err != nil {
			return
		}
		_, _ = fmt.Fprintf(ctx.App.Writer, "%s: %d bytes from %s\n", o[0], len(data), src)
	}
	return
}

func write(path, pkg, name, src string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer fn.IgnoreClose(f)()
	return GenerateStub(f, pkg, name, src, data)
}

func verify(ctx *cli.Context) (err error) {
	failed := 0
	for _, stub := range Stubs() {
		if e := VerifyStub(stub); e != nil {
			_, _ = fmt.Fprintf(ctx.App.Writer, "FAIL %s\n", e)
			failed++
			continue
		}
		_, _ = fmt.Fprintf(ctx.App.Writer, "ok   %s (%s, %d bytes)\n", stub.Name(), stub.Arch(), len(stub.Template()))
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d templates failed", failed), 1)
	}
	return
}

func inspect(ctx *cli.Context) (err error) {
	sp := spew.NewDefaultConfig()
	sp.DisablePointerAddresses = true
	filter := ArchUnknown
	if a := ctx.String("arch"); a != "" {
		if filter, err = ParseArch(a); err != nil {
			return
		}
	}
	for _, stub := range Stubs() {
		if filter != ArchUnknown && stub.Arch() != filter {
			continue
		}
		_, _ = fmt.Fprintf(ctx.App.Writer, "%s (%s):\n", stub.Name(), stub.Arch())
		sp.Fdump(ctx.App.Writer, stub.Layout())
	}
	return
}
