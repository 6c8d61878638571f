package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/kjk/idmap/log"
)

var cfg struct {
	verbose bool
	logDir  string
	apply   struct {
		file string
		base string
		json bool
		out  string
	}
	dump struct {
		file string
		base string
	}
	pack struct {
		src string
		dst string
	}
	stat struct {
		files []string
	}
}

var output io.Writer = os.Stdout

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Apply .idmap files (offset to name maps) to a symbol table.").UsageWriter(os.Stdout)
	app.HelpFlag.Short('h')
	app.Flag("verbose", "Enable verbose logging.").Short('v').BoolVar(&cfg.verbose)
	app.Flag("log-dir", "Directory for log files. No log files if empty.").StringVar(&cfg.logDir)

	applyCmd := app.Command("apply", "Apply names from an .idmap file and print the resulting symbol table.")
	applyCmd.Arg("file", "The .idmap file, optionally compressed (.gz, .bz2, .zst, .br).").Required().StringVar(&cfg.apply.file)
	applyCmd.Flag("base", "Image base, in hex.").Default("0x400000").StringVar(&cfg.apply.base)
	applyCmd.Flag("json", "Print symbols as JSON.").BoolVar(&cfg.apply.json)
	applyCmd.Flag("out", "Write symbols to this file instead of stdout.").StringVar(&cfg.apply.out)

	dumpCmd := app.Command("dump", "Print records of an .idmap file.")
	dumpCmd.Arg("file", "The .idmap file.").Required().StringVar(&cfg.dump.file)
	dumpCmd.Flag("base", "Image base, in hex, added to offsets.").Default("0").StringVar(&cfg.dump.base)

	packCmd := app.Command("pack", "Create an .idmap file from text form ('<offset> <name>' lines).")
	packCmd.Arg("src", "Text file.").Required().ExistingFileVar(&cfg.pack.src)
	packCmd.Arg("dst", "Destination .idmap file, compressed based on extension.").Required().StringVar(&cfg.pack.dst)

	statCmd := app.Command("stat", "Show information about .idmap files.")
	statCmd.Arg("files", "The .idmap files.").Required().StringsVar(&cfg.stat.files)

	parsedCmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	log.Verbose = cfg.verbose
	log.Init(&log.Config{Dir: cfg.logDir})
	defer log.Close()

	var err error
	switch parsedCmd {
	case applyCmd.FullCommand():
		err = runApply()
	case dumpCmd.FullCommand():
		err = runDump()
	case packCmd.FullCommand():
		err = runPack()
	case statCmd.FullCommand():
		err = runStat()
	}
	if code := checkError(err); code != 0 {
		log.Close()
		os.Exit(code)
	}
}

func checkError(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}
