// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command t3dump inspects T3 image files: block structure, dependency
// tables, pool pages, and method disassembly.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/go-interpreter/tads3/disasm"
	"github.com/go-interpreter/tads3/image"
	"github.com/go-interpreter/tads3/t3"
)

func main() {
	log.SetPrefix("t3dump: ")
	log.SetFlags(0)

	app := &cli.App{
		Name:      "t3dump",
		Usage:     "inspect T3 image files",
		ArgsUsage: "file1.t3 [file2.t3 [...]]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "headers", Aliases: []string{"x"}, Usage: "print block headers"},
			&cli.BoolFlag{Name: "deps", Aliases: []string{"p"}, Usage: "print dependency tables"},
			&cli.BoolFlag{Name: "dis", Aliases: []string{"d"}, Usage: "disassemble method bodies"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return cli.ShowAppHelp(ctx)
	}
	if !ctx.Bool("headers") && !ctx.Bool("deps") && !ctx.Bool("dis") {
		return fmt.Errorf("at least one of -x, -p or -d must be given")
	}
	for i, fname := range ctx.Args().Slice() {
		if i > 0 {
			fmt.Println()
		}
		if err := process(ctx, fname); err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
	}
	return nil
}

func process(ctx *cli.Context, fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return err
	}
	defer data.Unmap()

	img, err := image.Decode(data)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("%s: T3 image, format version %d, built %s\n",
		fname, img.Version, img.Timestamp)

	if ctx.Bool("headers") {
		printHeaders(img)
	}
	if ctx.Bool("deps") {
		printDeps(img)
	}
	if ctx.Bool("dis") {
		return printDisasm(img)
	}
	return nil
}

func printHeaders(img *image.File) {
	tab := tablewriter.NewWriter(os.Stdout)
	tab.SetHeader([]string{"block", "offset", "size", "flags"})
	for _, b := range img.Blocks {
		flags := ""
		if b.Mandatory() {
			flags = "mandatory"
		}
		tab.Append([]string{
			string(b.ID),
			fmt.Sprintf("%#x", b.Ofs),
			fmt.Sprint(b.Size),
			flags,
		})
	}
	tab.Render()
}

func printDeps(img *image.File) {
	if b := img.Find(t3.BlockFuncSetDep); b != nil {
		fmt.Println("function sets:")
		for i, n := range image.DepNames(img.BlockData(*b)) {
			fmt.Printf("  [%d] %s\n", i, n)
		}
	}
	if b := img.Find(t3.BlockMetaDep); b != nil {
		fmt.Println("metaclasses:")
		for i, n := range image.MetaDepNames(img.BlockData(*b)) {
			fmt.Printf("  [%d] %s\n", i, n)
		}
	}
}

func printDisasm(img *image.File) error {
	pool, err := img.Pool(t3.PoolCode)
	if err != nil {
		return err
	}
	entry, err := img.Entrypoint()
	if err != nil {
		return err
	}

	// method headers from MHLS when present; the entrypoint otherwise
	addrs := []uint32{uint32(entry)}
	if b := img.Find(t3.BlockMethodList); b != nil {
		addrs = image.MethodList(img.BlockData(*b))
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for i, ofs := range addrs {
		end := uint32(len(pool))
		if i+1 < len(addrs) {
			end = addrs[i+1]
		}
		hdr, ins, err := disasm.DisassembleMethod(pool, ofs, end)
		if err != nil {
			return err
		}
		marker := ""
		if t3.PoolOfs(ofs) == entry {
			marker = " (entrypoint)"
		}
		color.New(color.FgCyan).Printf(
			"\nmethod %06x%s: argc=%d opt=%d varargs=%v locals=%d max_stack=%d\n",
			ofs, marker, hdr.Argc, hdr.OptArgc, hdr.Varargs, hdr.Locals, hdr.MaxStack)
		for _, in := range ins {
			fmt.Printf("  %s\n", in)
		}
	}
	return nil
}
