// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hornetvm loads a single class file off disk and runs every
// static, no-argument method it declares, printing each result — the
// class-file analogue of cmd/wasm-run's "execute every zero-param export
// and print what comes back" loop.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/classfile"
	"github.com/hornet-go/hornet/ffi"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/heap"
	"github.com/hornet-go/hornet/interp"
	"github.com/hornet-go/hornet/thread"
)

func main() {
	log.SetPrefix("hornetvm: ")
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "enable/disable verbose interpreter tracing")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: hornetvm [-v] <class-file>")
		flag.Usage()
		os.Exit(1)
	}

	interp.SetDebugMode(*verbose)

	if err := run(os.Stdout, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

// loader resolves superclass names by parsing sibling .class files out of
// the entry class's directory, the way cmd/wasm-run's importer resolves an
// imported module's name to a file on disk. java/lang/Object is special:
// no .class file models it, so it resolves to a synthetic root klass with
// no superclass and no declared members.
type loader struct {
	dir   string
	cache map[string]*class.Klass
}

func newLoader(dir string) *loader {
	l := &loader{dir: dir, cache: map[string]*class.Klass{}}
	l.cache["java/lang/Object"] = &class.Klass{Name: "java/lang/Object"}
	return l
}

func (l *loader) lookup(name string) (*class.Klass, error) {
	if k, ok := l.cache[name]; ok {
		return k, nil
	}
	path := filepath.Join(l.dir, name+".class")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hornetvm: resolving %s: %w", name, err)
	}
	defer f.Close()
	k, err := classfile.Parse(f, l.lookup)
	if err != nil {
		return nil, err
	}
	l.cache[name] = k
	return k, nil
}

func run(w io.Writer, fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	l := newLoader(filepath.Dir(fname))
	k, err := classfile.Parse(f, l.lookup)
	if err != nil {
		return fmt.Errorf("could not parse class file: %w", err)
	}
	l.cache[k.Name] = k

	gc := heap.NewGC()
	it, err := interp.New(gc, ffi.NewAdapter(ffi.NewRegistry()))
	if err != nil {
		return fmt.Errorf("could not create interpreter: %w", err)
	}
	pool, err := frame.NewPool(64)
	if err != nil {
		return fmt.Errorf("could not create frame pool: %w", err)
	}
	defer pool.Close()
	t := thread.New(pool, it)

	ran := 0
	for _, m := range k.Methods {
		if m.Name == "<clinit>" || m.IsAbstract() || !m.IsStatic() || m.ArgsCount != 0 {
			continue
		}
		ran++
		if m.IsVoid {
			fmt.Fprintf(w, "%s() => ", m.Name)
		} else {
			fmt.Fprintf(w, "%s() %s => ", m.Name, m.ReturnType)
		}
		result, err := t.Execute(m, nil)
		if err != nil {
			fmt.Fprintf(w, "\n")
			log.Printf("%s: %v", m.Name, err)
			continue
		}
		if m.IsVoid {
			fmt.Fprintf(w, "\n")
			continue
		}
		fmt.Fprintf(w, "%v\n", result)
	}
	if ran == 0 {
		fmt.Fprintln(w, "no static no-argument methods to run")
	}
	return nil
}
