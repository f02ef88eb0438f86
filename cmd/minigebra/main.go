// cmd/minigebra/main.go: interactive front end for the minigebra engine
//
// Usage:
//
//	minigebra [-d library.db] [-n order] [-s style] [-e text] [-h]
//
// Each input line is compiled: quoted segments are commands ("vars x",
// "diff_order 2", "def f(x) = x^2"), the rest are expressions separated by
// ';'. Expressions and their derivatives are printed after every line.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/njchilds90/minigebra"
	"github.com/njchilds90/minigebra/internal/store"
)

const (
	historyFile = ".minigebra_history"
	libraryFile = ".minigebra.db"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: minigebra [options]

options:
  -d FILE   function library (default ~/%s, "-" for none)
  -n N      differentiation order (default 1)
  -s STYLE  output style: plain, latex, inline, block (default plain)
  -e TEXT   interpret TEXT and exit
  -h        show this help
`, libraryFile)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("minigebra: ")

	opts, optind, err := getopt.Getopts(os.Args, "d:n:s:e:h")
	if err != nil {
		log.Println(err)
		usage()
		os.Exit(2)
	}
	if optind < len(os.Args) {
		usage()
		os.Exit(2)
	}

	home, _ := os.UserHomeDir()
	dbPath := filepath.Join(home, libraryFile)
	style := minigebra.Plain
	order := -1
	var oneShot string
	for _, opt := range opts {
		switch opt.Option {
		case 'd':
			dbPath = opt.Value
		case 'n':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n < 0 {
				log.Fatalln("invalid -n parameter")
			}
			order = n
		case 's':
			if style, err = minigebra.ParseStyle(opt.Value); err != nil {
				log.Fatalln(err)
			}
		case 'e':
			oneShot = opt.Value
		case 'h':
			usage()
			return
		}
	}

	var lib store.Store = store.NewMemory()
	if dbPath != "-" {
		db, err := store.NewSQLite(dbPath)
		if err != nil {
			log.Fatalf("open library %s: %v", dbPath, err)
		}
		lib = db
	}

	sess := minigebra.NewSession(lib)
	if err := sess.LoadLibrary(); err != nil {
		log.Println(err)
	}
	if order >= 0 {
		sess.Options.DiffOrder = order
	}

	r := &repl{sess: sess, style: style, out: os.Stdout}
	status := 0
	if oneShot != "" {
		if !r.handle(oneShot) {
			status = 1
		}
	} else {
		status = r.run(filepath.Join(home, historyFile))
	}
	if err := lib.Close(); err != nil {
		log.Println(err)
	}
	os.Exit(status)
}
