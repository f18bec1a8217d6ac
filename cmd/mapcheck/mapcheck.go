// Command mapcheck parses a transport matrix file and dumps a summary,
// useful for sanity-checking a calibration before a run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spectro-data/golden.report/internal/spectro"
)

var (
	strict = flag.Bool("strict", false, "Reject malformed term lines instead of zero-filling them")
	nShow  = flag.Int("n", 5, "Number of leading terms to print")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: mapcheck [-strict] [-n terms] <matrix-file>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	m, err := spectro.LoadMatrix(path, *strict)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}

	fmt.Printf("%s: %d matrix element terms\n", path, m.NTerms())
	for i, term := range m.Terms {
		if i >= *nShow {
			fmt.Printf("... %d more\n", m.NTerms()-*nShow)
			break
		}
		fmt.Printf("  [%3d] coeff=%12.5e %12.5e %12.5e %12.5e exp=%d%d%d%d%d\n",
			i, term.Coeff[0], term.Coeff[1], term.Coeff[2], term.Coeff[3],
			term.Exp[0], term.Exp[1], term.Exp[2], term.Exp[3], term.Exp[4])
	}
}
